package headless

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionResultsAreInDocumentOrder(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<body><p id="a"></p><div id="b"></div><p id="c"></p></body>`))
	require.NoError(t, err)
	nodes, err := findFrom(doc, "//div | //p")
	require.NoError(t, err)
	var ids []string
	for _, n := range nodes {
		ids = append(ids, htmlquery.SelectAttr(n, "id"))
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestControlValues(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<form>
<input name="t" value="x"/><input type="checkbox" name="c"/><textarea name="a">text</textarea>
<select name="s"><option>One</option><option value="2">Two</option></select>
<select name="m" multiple><option value="1">One</option></select>
</form>`))
	require.NoError(t, err)
	find := func(xpath string) string { return controlValue(htmlquery.FindOne(doc, xpath)) }

	assert.Equal(t, "x", find("//input[@name='t']"))
	assert.Equal(t, "on", find("//input[@name='c']"))
	assert.Equal(t, "text", find("//textarea"))
	assert.Equal(t, "One", find("//select[@name='s']"))
	assert.Equal(t, "", find("//select[@name='m']"))

	setControlValue(htmlquery.FindOne(doc, "//textarea"), "changed")
	assert.Equal(t, "changed", find("//textarea"))
}

func TestAttributeHelpers(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<input id="i" type="checkbox"/>`))
	require.NoError(t, err)
	n := htmlquery.FindOne(doc, "//input")

	setFlag(n, "checked", true)
	assert.True(t, hasAttr(n, "checked"))
	addAttr(n, "value", "v")
	addAttr(n, "value", "w")
	v, ok := getAttr(n, "value")
	assert.True(t, ok)
	assert.Equal(t, "w", v)
	setFlag(n, "checked", false)
	assert.False(t, hasAttr(n, "checked"))
	assert.True(t, isCheckable(n))
}

func TestInsertHTMLAndText(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<body><div id="d">old</div> <script>x</script> <p>after</p></body>`))
	require.NoError(t, err)
	div := htmlquery.FindOne(doc, "//div")
	require.NoError(t, setInnerHTML(div, "<b>new</b> text"))
	assert.Equal(t, "<b>new</b> text", innerHTML(div))

	script := htmlquery.FindOne(doc, "//script")
	require.NoError(t, insertHTML(script.Parent, script.NextSibling, `<span id="w">written</span>`))
	assert.Equal(t, "new text written after", normalizedText(htmlquery.FindOne(doc, "//body")))
}
