package output

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"ipsniffer/scanner"
)

func sampleReport() *scanner.Report {
	return &scanner.Report{
		ID:        uuid.MustParse("6c1f3c5e-8f0a-4b8e-9d41-3c2a1f0e9b77"),
		Target:    netip.MustParseAddr("192.0.2.10"),
		Workers:   50,
		Timeout:   500 * time.Millisecond,
		Probed:    65535,
		Open:      []uint16{22, 80, 443},
		StartedAt: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
		Duration:  1234 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"text":   FormatText,
		"JSON":   FormatJSON,
		"yaml":   FormatYAML,
		"yml":    FormatYAML,
		" json ": FormatJSON,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatText))

	want := "22 is open\n" +
		"80 is open\n" +
		"443 is open\n" +
		"3 open ports on 192.0.2.10 (65535 probed, 50 workers, 1.234s)\n"
	assert.Equal(t, want, buf.String())
}

func TestRender_TextSingleAndEmpty(t *testing.T) {
	r := sampleReport()
	r.Open = []uint16{8080}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, FormatText))
	assert.Contains(t, buf.String(), "8080 is open\n1 open port on")

	r.Open = nil
	buf.Reset()
	require.NoError(t, Render(&buf, r, FormatText))
	assert.Equal(t, "0 open ports on 192.0.2.10 (65535 probed, 50 workers, 1.234s)\n", buf.String())
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatJSON))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "192.0.2.10", doc.Target)
	assert.Equal(t, []uint16{22, 80, 443}, doc.OpenPorts)
	assert.Equal(t, 3, doc.Count)
	assert.Equal(t, int64(500), doc.TimeoutMS)
	assert.Equal(t, int64(1234), doc.DurationMS)
}

func TestRender_JSONEmptyListIsArray(t *testing.T) {
	r := sampleReport()
	r.Open = nil

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, FormatJSON))
	assert.Contains(t, buf.String(), `"open_ports": []`)
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatYAML))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "6c1f3c5e-8f0a-4b8e-9d41-3c2a1f0e9b77", doc["id"])
	assert.Equal(t, []any{22, 80, 443}, doc["open_ports"])
	assert.Equal(t, 65535, doc["ports_probed"])
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, sampleReport(), Format("csv"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}
