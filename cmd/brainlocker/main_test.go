package main

import (
	"errors"
	"testing"

	"github.com/Dipak-sahani/brainlocker/internal/forms"
	"github.com/Dipak-sahani/brainlocker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestEnvFromDefaults(t *testing.T) {
	e := envFrom(fakeEnv(nil))

	assert.Equal(t, defaultPort, e.Port)
	assert.Equal(t, "prod", e.LogMode)
	assert.Equal(t, store.DefaultConfig().DataDir, e.Store.DataDir)
	assert.Equal(t, store.DefaultDBName, e.Store.DBName)
}

func TestEnvFromOverrides(t *testing.T) {
	e := envFrom(fakeEnv(map[string]string{
		"BRAINLOCKER_DATA_DIR": "/tmp/bl",
		"BRAINLOCKER_PORT":     "9000",
		"BRAINLOCKER_THEME":    "dark",
		"BRAINLOCKER_LOG":      "dev",
	}))

	assert.Equal(t, "/tmp/bl", e.Store.DataDir)
	assert.Equal(t, 9000, e.Port)
	assert.Equal(t, "dark", e.Theme)
	assert.Equal(t, "dev", e.LogMode)

	e = envFrom(fakeEnv(map[string]string{"BRAINLOCKER_PORT": "not-a-port"}))
	assert.Equal(t, defaultPort, e.Port)
}

func TestParseListArgs(t *testing.T) {
	opts, err := parseListArgs([]string{"--topic", "React Native", "--search", "hook", "--oldest", "--limit", "5"})
	require.NoError(t, err)
	assert.Equal(t, store.ListOptions{Topic: "React Native", Query: "hook", Oldest: true, Limit: 5}, opts)

	_, err = parseListArgs([]string{"--limit"})
	assert.Error(t, err)

	_, err = parseListArgs([]string{"--limit", "-1"})
	assert.Error(t, err)

	_, err = parseListArgs([]string{"--verbose"})
	assert.Error(t, err)
}

func TestParseProfileArgs(t *testing.T) {
	p, err := parseProfileArgs([]string{"--name", "Asha", "--age", " 19 ", "--class", "CS-2", "--email", "asha@example.com"})
	require.NoError(t, err)
	assert.Equal(t, forms.Profile{Name: "Asha", Age: 19, ClassName: "CS-2", Email: "asha@example.com"}, p)

	_, err = parseProfileArgs([]string{"--age", "nineteen"})
	var fe *forms.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Please enter a valid age", fe.Message)

	_, err = parseProfileArgs([]string{"--name"})
	assert.Error(t, err)
}

func TestFormatFromExt(t *testing.T) {
	assert.Equal(t, "yaml", formatFromExt("backup.YAML"))
	assert.Equal(t, "yaml", formatFromExt("backup.yml"))
	assert.Equal(t, "text", formatFromExt("sheet.txt"))
	assert.Equal(t, "json", formatFromExt("backup.json"))
	assert.Equal(t, "json", formatFromExt(""))
}

func TestExportEncodingRoundTrip(t *testing.T) {
	created := "2025-05-06T07:08:09.000Z"
	email := "asha@example.com"
	data := &store.ExportData{
		Version:    "1",
		ExportedAt: created,
		User:       &store.User{ID: 1, Name: "Asha", Age: 19, Email: &email},
		Topics:     []store.Topic{{ID: 1, Name: "Biology"}},
		Questions: []store.Question{
			{ID: 1, TopicName: "Go", Question: "What is defer?", Answer: "Runs at return", CreatedAt: &created},
		},
	}

	for _, format := range []string{"json", "yaml"} {
		raw, err := encodeExport(data, format)
		require.NoError(t, err, format)

		got, err := decodeExport(raw, format)
		require.NoError(t, err, format)
		assert.Equal(t, data, got, format)
	}
}
