package valkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	c := &Cache{namespace: "donamatch"}
	assert.Equal(t, "donamatch:ngo:12", c.key("ngo:12"))
	assert.Equal(t, "donamatch:nearby:ngo:", c.key("nearby:ngo:"))

	bare := &Cache{}
	assert.Equal(t, "ngo:12", bare.key("ngo:12"))
}

func TestScanPattern(t *testing.T) {
	c := &Cache{namespace: "donamatch"}
	assert.Equal(t, "donamatch:nearby:ngo:*", c.scanPattern("nearby:ngo:"))
	assert.Equal(t, "donamatch:*", c.scanPattern(""))

	bare := &Cache{}
	assert.Equal(t, "nearby:*", bare.scanPattern("nearby:"))
}
