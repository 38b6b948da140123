package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCorpus() []string {
	return []string{
		"Login fails with 500 on SSO redirect",
		"How to configure the wiki sidebar",
		"Database connection pool exhausted under load",
		"SSO login error after password reset",
		"Upgrading the ticket tracker to the latest release",
	}
}

func TestSearch_RelevantFirst(t *testing.T) {
	idx := New(testCorpus())

	hits := idx.Search("SSO login error", 5)

	require.NotEmpty(t, hits)
	// Positions 0 and 3 both mention SSO and login; position 3 matches
	// all three query terms and must rank first.
	assert.Equal(t, 3, hits[0].Position)
	positions := []int{hits[0].Position, hits[1].Position}
	assert.Contains(t, positions, 0)
}

func TestSearch_NoMatches(t *testing.T) {
	idx := New(testCorpus())

	hits := idx.Search("kubernetes ingress", 5)

	assert.Empty(t, hits)
}

func TestSearch_LimitsResults(t *testing.T) {
	idx := New(testCorpus())

	hits := idx.Search("the", 2)

	assert.LessOrEqual(t, len(hits), 2)
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := New(testCorpus())

	assert.Nil(t, idx.Search("", 5))
	assert.Nil(t, idx.Search("   ", 5))
}

func TestSearch_EmptyCorpus(t *testing.T) {
	idx := New(nil)

	assert.Nil(t, idx.Search("anything", 5))
	assert.Equal(t, 0, idx.Size())
}

func TestSearch_Deterministic(t *testing.T) {
	idx := New(testCorpus())

	first := idx.Search("login SSO", 5)
	second := idx.Search("login SSO", 5)

	assert.Equal(t, first, second)
}

func TestSearch_ScoresPositive(t *testing.T) {
	idx := New(testCorpus())

	for _, hit := range idx.Search("login", 5) {
		assert.Greater(t, hit.Score, 0.0)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"login", "fails", "with", "500", "on", "sso", "redirect"},
		Tokenize("Login fails with 500 on SSO-redirect!"))
	assert.Empty(t, Tokenize("  ...  "))
}
