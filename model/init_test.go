package model_test

import (
	. "github.com/shodgson/notedoc/model"
	"github.com/shodgson/notedoc/test/builder"
)

var (
	schema     = builder.Schema
	doc        = builder.Doc
	blockquote = builder.Blockquote
	h1         = builder.H1
	h2         = builder.H2
	p          = builder.P
	pre        = builder.Pre
	em         = builder.Em
	strong     = builder.Strong
	ul         = builder.Ul
	ol         = builder.Ol
	li         = builder.Li
	img        = builder.Img
	br         = builder.Br
	hr         = builder.Hr
	code       = builder.Code
	table      = builder.Table
	tr         = builder.Tr
	td         = builder.Td
	th         = builder.Th
	box        = builder.Box
	checked    = builder.Checked
	label      = builder.Label
	hl         = builder.Hl
	a          = builder.A

	strong2 = schema.Mark("strong")
	em2     = schema.Mark("em")
	code2   = schema.Mark("code")
	link    = func(href string, title ...string) *Mark {
		attrs := map[string]interface{}{"href": href}
		if len(title) > 0 {
			attrs["title"] = title[0]
		}
		return schema.Mark("link", attrs)
	}
)
