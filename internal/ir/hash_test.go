package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactHashDeterminism(t *testing.T) {
	content := []byte("var bool: x;\nconstraint x;\nsolve satisfy;\n")

	h1 := ArtifactHash(content)
	h2 := ArtifactHash(content)

	assert.Equal(t, h1, h2, "ArtifactHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestArtifactHashChangesWithContent(t *testing.T) {
	h1 := ArtifactHash([]byte("solve satisfy;\n"))
	h2 := ArtifactHash([]byte("solve maximize x;\n"))

	assert.NotEqual(t, h1, h2)
}

func TestScriptHashNormalizesText(t *testing.T) {
	// "é" precomposed vs. "e" + combining acute accent
	composed := "(declare-fun caf\u00e9 () Bool)\n"
	decomposed := "(declare-fun cafe\u0301 () Bool)\r\n"

	assert.Equal(t, ScriptHash(composed), ScriptHash(decomposed))
}

func TestDomainSeparation(t *testing.T) {
	data := "solve satisfy;\n"

	assert.NotEqual(t, ArtifactHash([]byte(data)), ScriptHash(data),
		"same bytes under different domains must hash differently")
}
