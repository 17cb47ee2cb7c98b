package transform_test

import (
	"github.com/shodgson/notedoc/test/builder"
)

var (
	schema = builder.Schema
	doc    = builder.Doc
	p      = builder.P
	h1     = builder.H1
	h2     = builder.H2
	ul     = builder.Ul
	li     = builder.Li
	em     = builder.Em
	strong = builder.Strong
	img    = builder.Img
	table  = builder.Table
	tr     = builder.Tr
	td     = builder.Td
	pre    = builder.Pre
	a      = builder.A
)
