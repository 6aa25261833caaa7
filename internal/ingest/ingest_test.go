package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-ad-insights/internal/dataset"
	"go-ad-insights/internal/model"
)

func TestReadCSVNormalization(t *testing.T) {
	in := strings.Join([]string{
		`"page_id", ad_id ,spend,note`,
		`A,X,10.5, hello `,
		`A,Y,NA,`,
		`B,Z,null,n/a`,
	}, "\n")

	table, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"page_id", "ad_id", "spend", "note"}, table.Columns())
	assert.Equal(t, 3, table.NumRows())

	spend, ok := table.At(0, "spend").Number()
	require.True(t, ok)
	assert.Equal(t, 10.5, spend)

	note, ok := table.At(0, "note").Text()
	require.True(t, ok, "cells are trimmed, not discarded")
	assert.Equal(t, "hello", note)

	assert.True(t, table.At(1, "spend").IsMissing(), "NA is a missing marker")
	assert.True(t, table.At(1, "note").IsMissing(), "empty cell is missing")
	assert.True(t, table.At(2, "spend").IsMissing(), "null is a missing marker")
	assert.True(t, table.At(2, "note").IsMissing(), "n/a is a missing marker")
}

func TestReadCSVShortRecordsPadded(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b,c\n1,2\n"))
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())
	assert.True(t, table.At(0, "c").IsMissing())
}

func TestReadCSVEmptyInput(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumRows())
	assert.Empty(t, table.Columns())
}

func TestReadJSONSchemaIsSortedUnion(t *testing.T) {
	in := `[
		{"page_id": "A", "spend": 10},
		{"page_id": "B", "clicks": 3, "active": true},
		{"page_id": "C", "spend": null}
	]`

	table, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"active", "clicks", "page_id", "spend"}, table.Columns())
	assert.Equal(t, 3, table.NumRows())

	spend, ok := table.At(0, "spend").Number()
	require.True(t, ok)
	assert.Equal(t, 10.0, spend)

	active, ok := table.At(1, "active").Text()
	require.True(t, ok)
	assert.Equal(t, "true", active)

	assert.True(t, table.At(0, "clicks").IsMissing(), "absent key is missing")
	assert.True(t, table.At(2, "spend").IsMissing(), "JSON null is missing")
}

func TestReadJSONRejectsNonArray(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"page_id": "A"}`))
	assert.Error(t, err)
}

func TestLoadRequiredColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page_id,spend\nA,10\n"))
	}))
	defer srv.Close()

	loader := NewLoader(zap.NewNop())

	_, err := loader.Load(context.Background(), model.Source{
		Type:            "csv",
		URL:             srv.URL,
		RequiredColumns: []string{"page_id", "ad_id"},
	})
	require.Error(t, err)
	var schemaErr *dataset.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "ad_id", schemaErr.Column)

	table, err := loader.Load(context.Background(), model.Source{
		Type:            "csv",
		URL:             srv.URL,
		RequiredColumns: []string{"page_id"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())
}

func TestLoadRetriesTransientFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("page_id,spend\nA,10\n"))
	}))
	defer srv.Close()

	loader := NewLoader(zap.NewNop())
	loader.Retries = 3

	table, err := loader.Load(context.Background(), model.Source{Type: "csv", URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, table.NumRows())
}

func TestLoadRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := NewLoader(zap.NewNop())
	loader.Retries = 1

	_, err := loader.Load(context.Background(), model.Source{Type: "csv", URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch")
}

func TestLoadUnknownSourceType(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), model.Source{Type: "parquet", URL: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")
}
