package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindNews, ParseKind("NW"))
	assert.Equal(t, KindArticle, ParseKind("AR"))
	assert.Equal(t, KindArticle, ParseKind(""))
	assert.Equal(t, KindArticle, ParseKind("bogus"))
	assert.Equal(t, "News", KindNews.Label())
	assert.Equal(t, "Article", KindArticle.Label())
}

func TestPostPreview(t *testing.T) {
	short := Post{Text: "hello"}
	assert.Equal(t, "hello...", short.Preview())

	long := Post{Text: strings.Repeat("a", 200)}
	got := long.Preview()
	assert.Len(t, got, 126)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestPostURL(t *testing.T) {
	assert.Equal(t, "/news/42", Post{ID: 42}.URL())
}
