package apply

import "github.com/PuerkitoBio/goquery"

// StyleID identifies the injected style sheet.
const StyleID = "otto-md-style"

// StyleSheet styles the markup vocabulary inside user messages.
const StyleSheet = `
    [data-message-author-role="user"] code { padding: 0.1em 0.25em; border-radius: 4px; }
    [data-message-author-role="user"] pre  { padding: .6em .8em; border-radius: 8px; overflow: auto; }
    [data-message-author-role="user"] .otto-h1 { display:block; font-weight:700; font-size:1.05em; margin: .4em 0 .1em; }
    [data-message-author-role="user"] .otto-h2 { display:block; font-weight:700; font-size:1.0em;  margin: .35em 0 .05em; opacity:.9;}
    [data-message-author-role="user"] .otto-h3 { display:block; font-weight:600; font-size:.95em;  margin: .3em 0 0; opacity:.85;}
    [data-message-author-role="user"] ul.otto-ul { margin: .2em 0; padding-left: 1.2em; }
    [data-message-author-role="user"] ul.otto-ul li { list-style: disc; margin: .15em 0; }
    [data-message-author-role="user"] ol.otto-ol { margin: .2em 0; padding-left: 1.2em; }
    [data-message-author-role="user"] ol.otto-ol li { margin: .15em 0; }
`

// InjectStyles appends the style sheet to the document head once.
func InjectStyles(doc *goquery.Document) {
	if doc.Find("style#" + StyleID).Length() > 0 {
		return
	}
	doc.Find("head").First().AppendHtml(`<style id="` + StyleID + `">` + StyleSheet + `</style>`)
}
