package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/fkrieter/pyhf/pkg/optimize"
)

const twoBinWorkspace = `{
  "channels": [
    {
      "name": "singlechannel",
      "samples": [
        {
          "name": "signal",
          "data": [12.0, 11.0],
          "modifiers": [{"name": "mu", "type": "normfactor", "data": null}]
        },
        {
          "name": "background",
          "data": [50.0, 52.0],
          "modifiers": [{"name": "uncorr_bkguncrt", "type": "shapesys", "data": [3.0, 7.0]}]
        }
      ]
    }
  ],
  "observations": [{"name": "singlechannel", "data": [51.0, 48.0]}],
  "measurements": [{"name": "measurement", "config": {"poi": "mu"}}]
}`

func newTestEcho() *echo.Echo {
	server := NewServer(NewFitStore(), nil, nil)
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func fitBody(extra string) string {
	body := `{"workspace":` + twoBinWorkspace
	if extra != "" {
		body += "," + extra
	}
	return body + "}"
}

func TestFitLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	createRec := doJSON(t, e, http.MethodPost, "/v1/fits", fitBody(""))
	if createRec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", createRec.Code, createRec.Body.String())
	}

	var created FitResponse
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !strings.HasPrefix(created.ID, "fit_") {
		t.Fatalf("fit id = %q, want fit_ prefix", created.ID)
	}
	if !created.Converged {
		t.Fatal("fit did not converge")
	}
	if created.POI != "mu" {
		t.Fatalf("poi = %q, want mu from the workspace measurement", created.POI)
	}
	wantNames := []string{"mu", "uncorr_bkguncrt[0]", "uncorr_bkguncrt[1]"}
	if len(created.Parameters) != len(wantNames) {
		t.Fatalf("parameters = %v", created.Parameters)
	}
	for i, p := range created.Parameters {
		if p.Name != wantNames[i] {
			t.Fatalf("parameter[%d].Name = %q, want %q", i, p.Name, wantNames[i])
		}
	}
	if math.Abs(created.TwiceNLL-24.990875) > 1e-3 {
		t.Fatalf("twice_nll = %v, want about 24.99", created.TwiceNLL)
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/fits/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	listRec := doJSON(t, e, http.MethodGet, "/v1/fits", "")
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status: got %d body=%s", listRec.Code, listRec.Body.String())
	}
	var list FitList
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("list = %+v, want the stored fit", list)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/fits/"+created.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	getDeletedRec := doJSON(t, e, http.MethodGet, "/v1/fits/"+created.ID, "")
	if getDeletedRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", getDeletedRec.Code, getDeletedRec.Body.String())
	}
}

func TestCreateFitPinnedPOI(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/fits", fitBody(`"poi_value":1.0`))
	if rec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var fit FitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fit.Parameters[0].Value != 1.0 {
		t.Fatalf("pinned parameter = %v, want exactly 1", fit.Parameters[0].Value)
	}
	if math.Abs(fit.TwiceNLL-28.922180) > 2e-3 {
		t.Fatalf("twice_nll = %v, want about 28.92", fit.TwiceNLL)
	}
}

func TestCreateFitValidationErrors(t *testing.T) {
	t.Parallel()

	e := newTestEcho()

	rec := doJSON(t, e, http.MethodPost, "/v1/fits", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "workspace is required") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/fits", fitBody(`"data":[1.0, 2.0, 3.0]`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad data length, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/fits", `{"workspace": {"channels": []}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty workspace, got %d body=%s", rec.Code, rec.Body.String())
	}

	badModifier := strings.Replace(fitBody(""), `"type": "normfactor"`, `"type": "lumi"`, 1)
	rec = doJSON(t, e, http.MethodPost, "/v1/fits", badModifier)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown modifier, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "unprocessable_error") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	noObservations := strings.Replace(fitBody(""),
		`"observations": [{"name": "singlechannel", "data": [51.0, 48.0]}],`, "", 1)
	rec = doJSON(t, e, http.MethodPost, "/v1/fits", noObservations)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without observations, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetFitNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doJSON(t, e, http.MethodGet, "/v1/fits/fit_missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodDelete, "/v1/fits/fit_missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHypoTestEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/hypotest", fitBody(`"test_poi":1.0`))
	if rec.Code != http.StatusOK {
		t.Fatalf("hypotest status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var res HypoTestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TestPOI != 1.0 {
		t.Fatalf("test_poi = %v, want 1", res.TestPOI)
	}
	if math.Abs(res.CLs-0.0530380) > 2e-3 {
		t.Fatalf("cls = %v, want about 0.053", res.CLs)
	}
	if res.CLsb <= 0 || res.CLb <= 0 {
		t.Fatalf("tail probabilities = %v/%v, want positive", res.CLsb, res.CLb)
	}
	if len(res.Expected) != 5 || len(res.NSigma) != 5 {
		t.Fatalf("expected band = %v at %v, want five entries", res.Expected, res.NSigma)
	}
}

func TestHypoTestFitFailure(t *testing.T) {
	t.Parallel()

	server := NewServer(NewFitStore(), &optimize.Newton{MaxIterations: 1}, nil)
	e := echo.New()
	server.Register(e)

	rec := doJSON(t, e, http.MethodPost, "/v1/hypotest", fitBody(""))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for starved optimizer, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not converged") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}
