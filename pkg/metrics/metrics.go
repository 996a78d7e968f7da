package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth flow counters. Labels stay low-cardinality: a fixed result per flow.
var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"}) // success, invalid_credentials, locked

	TokenRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_rotations_total",
		Help: "Refresh token rotations by result",
	}, []string{"result"}) // success, rejected, reuse_detected

	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Registration requests by result",
	}, []string{"result"}) // requested, verified, conflict

	VerificationEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_verification_emails_total",
		Help: "Verification emails dispatched by flow type",
	}, []string{"type"})
)

// Result label values
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultLocked             = "locked"
	ResultRejected           = "rejected"
	ResultReuseDetected      = "reuse_detected"
	ResultRequested          = "requested"
	ResultVerified           = "verified"
	ResultConflict           = "conflict"
)
