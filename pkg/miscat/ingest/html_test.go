package ingest

import (
	"strings"
	"testing"
)

func TestExtractTextStripsTags(t *testing.T) {
	got := ExtractText("<p>Genuine <b>leather</b> wallet</p>")

	if strings.Contains(got, "<") {
		t.Errorf("markup left in output: %q", got)
	}
	for _, word := range []string{"Genuine", "leather", "wallet"} {
		if !strings.Contains(got, word) {
			t.Errorf("output %q missing %q", got, word)
		}
	}
}

func TestExtractTextSeparatesBlocks(t *testing.T) {
	// Adjacent elements must not fuse their words together
	got := ExtractText("<p>red</p><p>shirt</p>")

	if strings.Contains(got, "redshirt") {
		t.Errorf("block text fused: %q", got)
	}
}

func TestExtractTextSkipsScriptAndStyle(t *testing.T) {
	got := ExtractText(`<style>.x{color:red}</style><script>var q=1;</script><p>cotton tee</p>`)

	if strings.Contains(got, "color") || strings.Contains(got, "var") {
		t.Errorf("script/style content leaked: %q", got)
	}
	if !strings.Contains(got, "cotton tee") {
		t.Errorf("visible text lost: %q", got)
	}
}

func TestExtractTextPlainPassthrough(t *testing.T) {
	got := ExtractText("plain description, no markup")

	if got != "plain description, no markup" {
		t.Errorf("got %q", got)
	}
}
