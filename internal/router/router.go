package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/handler"
	"github.com/jamiljuma2/edulink/internal/middleware"
)

type Handlers struct {
	Payments      *handler.PaymentHandler
	Webhook       *handler.WebhookHandler
	Subscriptions *handler.SubscriptionHandler
	Writer        *handler.WriterHandler
	Admin         *handler.AdminHandler
}

func Setup(h Handlers, auth *middleware.Auth, rdb *redis.Client) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))

	// Public endpoints: health plus the rail's outcome webhook, which
	// authenticates by signature rather than session.
	r.Group(func(pub chi.Router) {
		pub.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		pub.Post("/api/payments/webhook", h.Webhook.Handle)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Authenticate)

		api.Group(func(st chi.Router) {
			st.Use(middleware.RequireRole(domain.RoleStudent))
			st.Post("/payments/mpesa/topup", h.Payments.TopUp)
			st.Post("/payments/checkout", h.Payments.Checkout)
			st.Post("/payments/checkout/capture", h.Payments.Capture)
			st.Get("/payments/status", h.Payments.Status)
			st.Get("/student/wallet", h.Payments.Wallet)
		})

		api.Group(func(wr chi.Router) {
			wr.Use(middleware.RequireRole(domain.RoleWriter))
			wr.Post("/subscriptions/checkout", h.Subscriptions.Checkout)
			wr.Post("/subscriptions/pay", h.Subscriptions.Pay)
			wr.Get("/writer/earnings", h.Writer.Earnings)
			wr.Post("/writer/withdrawals", h.Writer.Withdraw)
		})

		api.Group(func(ad chi.Router) {
			ad.Use(middleware.RequireRole(domain.RoleAdmin))
			ad.Get("/admin/payments", h.Admin.ListPayments)
			ad.Post("/admin/withdrawals/approve", h.Admin.ApproveWithdrawal)
		})
	})

	return r
}
