package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpers(t *testing.T) {
	assert.Equal(t, "path=markdowns/a.md", Path("markdowns/a.md").String())
	assert.Equal(t, "count=3", Count(3).String())
	assert.Equal(t, "stage=ingest", Stage("ingest").String())
	assert.Equal(t, "error=boom", Error(errors.New("boom")).String())
	assert.Equal(t, "error=", Error(nil).String())
}
