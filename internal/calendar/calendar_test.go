package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	assert.Len(t, Months, 12)
	assert.Equal(t, 0, Index(Months, "Jan"))
	assert.Equal(t, 11, Index(Months, " Dec "))
	assert.Equal(t, -1, Index(Months, "January"))
	assert.Equal(t, -1, Index(Months, "jan"))
}
