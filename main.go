// Command chatmd renders Markdown-like chat text as inline HTML markup.
package main

import "github.com/gaurav-prasanna/chatmd/cmd"

func main() {
	cmd.Execute()
}
