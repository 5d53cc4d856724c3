package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoogleVerifier_Profile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sub":"1","email":"grace@example.com","name":"Grace","picture":"https://img/g.png"}`))
		case "Bearer no-email":
			_, _ = w.Write([]byte(`{"sub":"2","name":"Nobody"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	v := NewGoogleVerifier(srv.URL, srv.Client())
	ctx := context.Background()

	profile, err := v.Profile(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "grace@example.com", profile.Email)
	require.Equal(t, "Grace", profile.Name)
	require.Equal(t, "https://img/g.png", profile.Picture)

	_, err = v.Profile(ctx, "no-email")
	require.Error(t, err)

	_, err = v.Profile(ctx, "expired")
	require.Error(t, err)
}
