package vci

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements_GroupedItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/company/VNM/financial-statements", r.URL.Path)
		assert.Equal(t, "ratio", r.URL.Query().Get("kind"))
		assert.Equal(t, "year", r.URL.Query().Get("period"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"yearReport":2024,"lengthReport":5,"items":[
				{"group":"Chỉ tiêu định giá","field":"P/E","value":16.2},
				{"group":"Chỉ tiêu khả năng sinh lợi","field":"ROE (%)","value":0.28},
				{"group":"","field":"ticker","value":"VNM"}
			]}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	rows, err := client.Statements(context.Background(), "VNM", KindRatio, PeriodYear)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2024, rows[0].YearReport)
	assert.Equal(t, 5, rows[0].LengthReport)
	require.Len(t, rows[0].Items, 3)
	assert.Equal(t, "Chỉ tiêu định giá", rows[0].Items[0].Group)
	assert.Equal(t, "P/E", rows[0].Items[0].Field)
	assert.Equal(t, 16.2, rows[0].Items[0].Value)
	assert.Equal(t, "VNM", rows[0].Items[2].Value)
}

func TestSymbolsByIndustry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/listing/symbols-by-industry", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"symbol":"VCB","icbCode2":"8300","icbCode3":"8350","icbCode4":"8355"},
			{"symbol":"ACB","icbCode2":"8300","icbCode3":"8350","icbCode4":"8355"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.SymbolsByIndustry(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "VCB", got[0].Symbol)
	assert.Equal(t, "8355", got[0].ICBCode4)
}

func TestIndustries_Catalog(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/listing/industries", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"icbCode":"8355","icbName":"Ngân hàng","enIcbName":"Banks","level":4}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.Industries(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Banks", got[0].EnName)
	assert.Equal(t, 4, got[0].Level)
}

func TestGetJSON_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Industries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetJSON_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"unknown ticker"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Statements(context.Background(), "???", KindIncome, PeriodYear)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
