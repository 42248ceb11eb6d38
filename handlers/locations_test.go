// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ballot-desk/geo"
	"github.com/danielhkuo/ballot-desk/models"
	"github.com/danielhkuo/ballot-desk/testutil"
)

func TestLocationCascade(t *testing.T) {
	svc, _, _ := newTestServices(t)
	h := NewLocationHandler(svc)

	w := serve(h.Provinces, httptest.NewRequest(http.MethodGet, "/", nil), "")
	testutil.AssertStatus(t, w, http.StatusOK)
	var provinces []geo.Ref
	testutil.AssertJSON(t, w, &provinces)
	if len(provinces) != 2 || provinces[0].Name != "Koshi" {
		t.Errorf("provinces = %+v", provinces)
	}

	w = serve(h.Districts, httptest.NewRequest(http.MethodGet, "/", nil), testutil.ProvinceID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var districts []geo.Ref
	testutil.AssertJSON(t, w, &districts)
	if len(districts) != 1 || districts[0].ID != geo.ID(testutil.DistrictID) {
		t.Errorf("districts = %+v", districts)
	}

	w = serve(h.Municipalities, httptest.NewRequest(http.MethodGet, "/", nil), testutil.DistrictID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var municipalities []geo.Ref
	testutil.AssertJSON(t, w, &municipalities)
	if len(municipalities) != 2 {
		t.Errorf("municipalities = %+v", municipalities)
	}

	w = serve(h.Districts, httptest.NewRequest(http.MethodGet, "/", nil), "42")
	testutil.AssertStatus(t, w, http.StatusNotFound)
	w = serve(h.Municipalities, httptest.NewRequest(http.MethodGet, "/", nil), "42")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAuditList(t *testing.T) {
	svc, st, _ := newTestServices(t)
	h := NewAuditHandler(svc)

	ctx := context.Background()
	for i, action := range []string{"create_election", "approve_voter", "publish_result"} {
		entry := models.AuditEntry{
			ID:         "a" + string(rune('0'+i)),
			Action:     action,
			EntityType: models.EntityElection,
			Details:    []byte(`{}`),
			Admin:      "officer",
			CreatedAt:  testutil.Now.Add(time.Duration(i) * time.Minute),
		}
		if err := st.InsertAudit(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	w := serve(h.List, httptest.NewRequest(http.MethodGet, "/?per_page=2", nil), "")
	testutil.AssertStatus(t, w, http.StatusOK)
	var page models.Page[models.AuditEntry]
	testutil.AssertJSON(t, w, &page)
	if page.Total != 3 || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Items[0].Action != "publish_result" {
		t.Errorf("newest entry first, got %q", page.Items[0].Action)
	}

	w = serve(h.List, httptest.NewRequest(http.MethodGet, "/?page=abc", nil), "")
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
