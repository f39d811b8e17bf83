package classifier

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Classify Tests
// ============================================================================

func TestClassify_EachPhraseAnyCaseAnyPosition(t *testing.T) {
	c := New(nil)

	for _, phrase := range DefaultPhrases {
		variants := []string{
			phrase,
			strings.ToUpper(phrase),
			"Hello, this is " + strings.ToUpper(phrase[:1]) + phrase[1:] + " calling",
			"prefix" + phrase + "suffix",
		}
		for _, msg := range variants {
			res := c.Classify(msg)
			assert.True(t, res.IsSuspicious, "message %q should be suspicious", msg)
			assert.Contains(t, res.Keywords, phrase, "message %q", msg)
		}
	}
}

func TestClassify_NoPhrases(t *testing.T) {
	c := New(nil)

	for _, msg := range []string{
		"hi mom, call me later",
		"Dinner at 6?",
		"your package was delivered",
	} {
		res := c.Classify(msg)
		assert.False(t, res.IsSuspicious, "message %q", msg)
		assert.Empty(t, res.Keywords, "message %q", msg)
		assert.NotNil(t, res.Keywords)
	}
}

func TestClassify_EmptyMessage(t *testing.T) {
	c := New(nil)

	for _, msg := range []string{"", "   ", "\n\t"} {
		res := c.Classify(msg)
		assert.False(t, res.IsSuspicious)
		assert.Equal(t, []string{}, res.Keywords)
	}
}

func TestClassify_KeywordsFollowListOrder(t *testing.T) {
	c := New(nil)

	res := c.Classify("Verify your account now, this is URGENT. Urgent!")

	require.True(t, res.IsSuspicious)
	assert.Equal(t, []string{"urgent", "verify your account"}, res.Keywords)
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(nil)
	msg := "FREE GIFT for the prize winner, limited time only"

	first := c.Classify(msg)
	second := c.Classify(msg)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"prize winner", "free gift", "limited time"}, first.Keywords)
}

func TestClassify_CustomPhrases(t *testing.T) {
	c := New([]string{"Gift Card", "gift card", " ", "IRS"})

	assert.Equal(t, []string{"gift card", "irs"}, c.Phrases())

	res := c.Classify("The irs needs a GIFT CARD payment")
	assert.True(t, res.IsSuspicious)
	assert.Equal(t, []string{"gift card", "irs"}, res.Keywords)

	// Default phrases no longer apply
	assert.False(t, c.Classify("urgent").IsSuspicious)
}

func TestNew_BlankListFallsBackToDefaults(t *testing.T) {
	c := New([]string{"", "   "})
	assert.Equal(t, DefaultPhrases, c.Phrases())
}

func TestPhrases_ReturnsCopy(t *testing.T) {
	c := New(nil)
	p := c.Phrases()
	p[0] = "changed"

	assert.Equal(t, "urgent", c.Phrases()[0])
}

// ============================================================================
// LoadPhrases Tests
// ============================================================================

func TestLoadPhrases(t *testing.T) {
	phrases, err := LoadPhrases(filepath.Join("testdata", "phrases.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"gift card", "urgent", "irs"}, phrases)
}

func TestLoadPhrases_Empty(t *testing.T) {
	_, err := LoadPhrases(filepath.Join("testdata", "empty.yaml"))
	assert.Error(t, err)
}

func TestLoadPhrases_Missing(t *testing.T) {
	_, err := LoadPhrases(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
