package models

import (
	"encoding/json"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	var q QueryResultSettings
	q.Normalize(50)
	if q.Paging.Top != 50 || q.Paging.Skip != 0 {
		t.Errorf("paging = %+v", q.Paging)
	}
}

func TestNormalizePreservesExplicitValues(t *testing.T) {
	q := QueryResultSettings{Paging: Paging{Top: 5, Skip: 20}}
	q.Normalize(50)
	if q.Paging.Top != 5 || q.Paging.Skip != 20 {
		t.Errorf("paging = %+v", q.Paging)
	}
}

func TestNormalizeClampsInvalidValues(t *testing.T) {
	q := QueryResultSettings{Paging: Paging{Top: -1, Skip: -7}}
	q.Normalize(10)
	if q.Paging.Top != 10 || q.Paging.Skip != 0 {
		t.Errorf("paging = %+v", q.Paging)
	}
}

func TestSortingOmittedWhenAbsent(t *testing.T) {
	q := QueryResultSettings{Paging: Paging{Top: 50}}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["sorting"]; ok {
		t.Errorf("sorting present: %s", data)
	}
}
