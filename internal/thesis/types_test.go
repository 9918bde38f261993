package thesis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Abstract ")
	assert.NoError(t, err)
	assert.Equal(t, ModeAbstract, m)

	_, err = ParseMode("essay")
	var inputErr *InputError
	assert.True(t, errors.As(err, &inputErr), "expected InputError")
}

func TestModesHaveDescriptions(t *testing.T) {
	assert.Len(t, Modes(), 5)
	for _, m := range Modes() {
		assert.True(t, m.Valid())
		assert.NotEmpty(t, m.Description(), "mode %s", m)
	}
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryDiction.Valid())
	assert.False(t, Category("grammar").Valid(), "categories are case sensitive")
	assert.False(t, Category("Style").Valid())
}

func TestHistoryEntryPreview(t *testing.T) {
	e := HistoryEntry{Result: AnalysisResult{FormattedText: "Penelitian ini dilakukan oleh penulis."}}
	assert.Equal(t, "Penelitian...", e.Preview(10))
	assert.Equal(t, "Penelitian ini dilakukan oleh penulis.", e.Preview(100))
}

func TestAnalysisErrorUnwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := &AnalysisError{Attempts: 3, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "3 attempts")
}
