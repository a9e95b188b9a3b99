package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "sts-server dev (git unknown, built unknown)", String("sts-server"))
}
