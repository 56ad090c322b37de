package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anubhavsharmawork/fintech-sub000/internal/http/auth"
)

const secret = "test-secret"

func signToken(t *testing.T, subject, key string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: subject})

	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)

	return signed
}

func TestMiddleware(t *testing.T) {
	ownerID := uuid.New()

	type testCase struct {
		name       string
		header     string
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "ValidToken",
			header:     "Bearer " + signToken(t, ownerID.String(), secret),
			wantStatus: http.StatusOK,
		},
		{
			name:       "MissingHeader",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "WrongScheme",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "WrongKey",
			header:     "Bearer " + signToken(t, ownerID.String(), "other-secret"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "SubjectNotUUID",
			header:     "Bearer " + signToken(t, "alice", secret),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOwner uuid.UUID

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := auth.OwnerID(r.Context())
				require.True(t, ok)

				gotOwner = id
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			auth.Middleware(secret)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, ownerID, gotOwner)
			}
		})
	}
}
