package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert.True(t, strings.HasPrefix(Version(), "v0."), Version())
}
