package middlewares

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
)

// TxMiddleware wraps an HTTP handler with a database transaction.
// The transaction is committed when the handler answers below 400 and rolled back otherwise.
func TxMiddleware(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tx, err := db.BeginTxx(r.Context(), nil)
			if err != nil {
				logger.Log.Errorw("failed to begin transaction", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			defer func() {
				if rec := recover(); rec != nil {
					tx.Rollback()
					panic(rec)
				}
			}()

			rec := &txResponseWriter{header: make(http.Header), statusCode: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(setTxToContext(r.Context(), tx)))

			if rec.statusCode >= http.StatusBadRequest {
				if err := tx.Rollback(); err != nil {
					logger.Log.Errorw("failed to rollback transaction", "error", err)
				}
				rec.flush(w)
				return
			}

			if err := tx.Commit(); err != nil {
				logger.Log.Errorw("failed to commit transaction", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			rec.flush(w)
		})
	}
}

// txResponseWriter holds the response until the transaction outcome is known.
type txResponseWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (rw *txResponseWriter) Header() http.Header { return rw.header }

func (rw *txResponseWriter) WriteHeader(code int) { rw.statusCode = code }

func (rw *txResponseWriter) Write(b []byte) (int, error) {
	rw.body = append(rw.body, b...)
	return len(b), nil
}

func (rw *txResponseWriter) flush(w http.ResponseWriter) {
	for k, v := range rw.header {
		w.Header()[k] = v
	}
	w.WriteHeader(rw.statusCode)
	w.Write(rw.body)
}

type txKey struct{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}
