package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_BasicMarkup(t *testing.T) {
	got := Extract(`<p>First paragraph.</p><p>Second <strong>bold</strong> paragraph.</p>`)
	assert.Equal(t, "First paragraph.\nSecond bold paragraph.", got)
}

func TestExtract_SkipsScriptAndStyle(t *testing.T) {
	got := Extract(`<div>visible</div><script>alert(1)</script><style>.x{}</style>`)
	assert.Equal(t, "visible", got)
}

func TestExtract_Lists(t *testing.T) {
	got := Extract(`<ul><li>one</li><li>two</li></ul>`)
	assert.Equal(t, "one\ntwo", got)
}

func TestExtract_MalformedMarkup(t *testing.T) {
	got := Extract(`<p>unclosed <b>tags`)
	assert.Equal(t, "unclosed tags", got)
}

func TestExtract_Empty(t *testing.T) {
	assert.Equal(t, "", Extract(""))
	assert.Equal(t, "", Extract("   \n  "))
}

func TestExtract_CollapsesBlankLines(t *testing.T) {
	got := Extract("<p></p><p>  </p><p>text</p><p></p>")
	assert.Equal(t, "text", got)
}
