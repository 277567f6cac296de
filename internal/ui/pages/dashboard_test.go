package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
)

// elementsByID indexes every element carrying an id attribute.
func elementsByID(t *testing.T, doc string) map[string]*html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	found := map[string]*html.Node{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" {
					found[a.Val] = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func TestDashboardPage_HasEverySlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DashboardPage("Pipeline").Render(context.Background(), &buf))
	body := buf.String()

	assert.Contains(t, body, "<title>Pipeline - pipedash</title>")
	assert.Contains(t, body, `href="/static/app.css"`)
	assert.Contains(t, body, `src="`+DatastarScript+`"`)

	ids := elementsByID(t, body)
	for _, slot := range dashboard.Slots {
		n, ok := ids[slot]
		if assert.True(t, ok, "slot %s missing", slot) {
			assert.Equal(t, "span", n.Data)
		}
	}
	tbody, ok := ids[dashboard.TablePredictions]
	require.True(t, ok)
	assert.Equal(t, "tbody", tbody.Data)
	assert.Nil(t, tbody.FirstChild, "table starts empty")

	root, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "@get('"+LoadPath+"')", attrOf(findElement(root, "body"), "data-init"))
	assert.Equal(t, "@post('"+ReloadPath+"')", attrOf(findElement(root, "button"), "data-on:click"))
}

func TestDashboardPage_EscapesTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DashboardPage("<ops>").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<title>&lt;ops&gt; - pipedash</title>")
	assert.NotContains(t, buf.String(), "<ops>")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attrOf(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestSlotText_Escapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SlotText("metric_name", "<b>rmse</b>").Render(context.Background(), &buf))
	assert.Equal(t, `<span class="value" id="metric_name">&lt;b&gt;rmse&lt;/b&gt;</span>`, buf.String())
}

func TestTableBody_Rows(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{{"1", "0", "10", "10"}, {"2", "0.5", "10.3", "10.28"}}
	require.NoError(t, TableBody(dashboard.TablePredictions, rows).Render(context.Background(), &buf))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "<tr>"))
	assert.Equal(t, 8, strings.Count(out, "<td>"))
	assert.True(t, strings.HasPrefix(out, `<tbody id="predictions_body">`))
}

func TestTableBody_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TableBody(dashboard.TablePredictions, nil).Render(context.Background(), &buf))
	assert.Equal(t, `<tbody id="predictions_body"></tbody>`, buf.String())
}
