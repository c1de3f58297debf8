package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
)

func ptr(v int64) *int64 { return &v }

type guardFixture struct {
	sps map[int64]*subprocess.Subprocess
}

func (f guardFixture) Find(_ context.Context, id int64) (*subprocess.Subprocess, error) {
	sp, ok := f.sps[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return sp, nil
}

func (f guardFixture) FindByProcessAndUnit(_ context.Context, _, _ int64) (*subprocess.Subprocess, error) {
	return nil, errors.New("not found")
}

func (guardFixture) LatestMovement(_ context.Context, _ int64) (*subprocess.Movement, error) {
	return nil, nil
}

func (guardFixture) Hierarchy(_ context.Context) (*org.Hierarchy, error) {
	return org.NewHierarchy([]org.Unit{
		{ID: 1, Acronym: "SEDOC", Type: org.UnitTypeRoot, Active: true},
		{ID: 4, Acronym: "SESEL", Type: org.UnitTypeOperational, ParentID: ptr(1), Active: true, ResponsibleID: "ana"},
	}), nil
}

func guardRouter() http.Handler {
	f := guardFixture{sps: map[int64]*subprocess.Subprocess{
		1: {
			ID:        1,
			UnitID:    4,
			Situation: subprocess.SituationCadastroInProgress,
			Process:   &subprocess.Process{ID: 100, Type: subprocess.ProcessMapping, Status: subprocess.ProcessInProgress},
		},
	}}
	engine := access.NewEngine(f, f, f, nil)

	r := mux.NewRouter()
	r.Use(Authenticate())
	sub := r.PathPrefix("/subprocesses/{id}").Subrouter()
	sub.Use(RequireAction(engine, access.ActionEditCadastro))
	sub.HandleFunc("", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPut)
	return r
}

func request(id, role, unit string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/subprocesses/1", nil)
	if id != "" {
		req.Header.Set(HeaderSubjectID, id)
		req.Header.Set(HeaderSubjectRole, role)
		req.Header.Set(HeaderSubjectUnit, unit)
	}
	return req
}

func TestRequireAction_Allows(t *testing.T) {
	rec := httptest.NewRecorder()
	guardRouter().ServeHTTP(rec, request("ana", "CHEFE", "4"))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAction_ForbidsWrongRole(t *testing.T) {
	rec := httptest.NewRecorder()
	guardRouter().ServeHTTP(rec, request("zoe", "SERVIDOR", "4"))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAction_ForbidsOtherUnit(t *testing.T) {
	rec := httptest.NewRecorder()
	guardRouter().ServeHTTP(rec, request("root", "CHEFE", "1"))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticate_MissingHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	guardRouter().ServeHTTP(rec, request("", "", ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAction_BadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/subprocesses/abc", nil)
	req.Header.Set(HeaderSubjectID, "ana")
	req.Header.Set(HeaderSubjectRole, "CHEFE")
	req.Header.Set(HeaderSubjectUnit, "4")
	rec := httptest.NewRecorder()
	guardRouter().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccessSubject_Nil(t *testing.T) {
	require.Nil(t, AccessSubject(nil))
}
