// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	"github.com/PourroyJean/babymiam-sub000/pkg/errutil"
)

// errCode extracts the oops error code, or empty for plain errors.
func errCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			return code
		}
	}
	return ""
}

// limiterIdentity canonicalizes an email for the attempts ledger. Addresses
// that don't parse still need a stable key, so those fall back to a trim and
// lowercase.
func limiterIdentity(email string) string {
	if normalized, err := auth.NormalizeEmail(email); err == nil {
		return normalized
	}
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Title": "Log in"}
	if r.URL.Query().Get("reset") == "1" {
		data["Notice"] = "Password updated. Log in with your new password."
	}
	h.render(w, http.StatusOK, "login", data)
}

// Login authenticates the credentials form. Unknown email and wrong password
// produce the same page; the rate limiter is consulted first and every
// attempt is recorded best-effort.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	form, err := parseCredentialsForm(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, "login", map[string]any{
			"Title": "Log in",
			"Email": form.Email,
			"Error": formMessage(errCode(err)),
		})
		return
	}

	identity := limiterIdentity(form.Email)
	ip := clientIP(r)

	if h.limiter.IsLimited(r.Context(), identity, ip) {
		h.countRateLimited("login")
		h.countLogin("rate_limited")
		h.render(w, http.StatusTooManyRequests, "login", map[string]any{
			"Title": "Log in",
			"Email": form.Email,
			"Error": formMessage("AUTH_RATE_LIMITED"),
		})
		return
	}

	_, token, err := h.accounts.Login(r.Context(), form.Email, form.Password)
	h.limiter.Record(r.Context(), identity, ip, err == nil)
	if err != nil {
		h.countLogin("failure")
		h.render(w, http.StatusUnauthorized, "login", map[string]any{
			"Title": "Log in",
			"Email": form.Email,
			"Error": formMessage("AUTH_INVALID_CREDENTIALS"),
		})
		return
	}

	h.countLogin("success")
	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SignupPage renders the signup form.
func (h *Handlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signup", map[string]any{"Title": "Sign up"})
}

// Signup creates an account and logs it in. A taken email is surfaced as
// such; this is the one deliberate departure from non-enumeration. The
// verification email is best-effort.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	form, err := parseCredentialsForm(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, "signup", map[string]any{
			"Title": "Sign up",
			"Email": form.Email,
			"Error": formMessage(errCode(err)),
		})
		return
	}

	account, token, err := h.accounts.Signup(r.Context(), form.Email, form.Password)
	if err != nil {
		code := errCode(err)
		if errors.Is(err, auth.ErrEmailTaken) {
			code = "ACCOUNT_EMAIL_TAKEN"
		}
		status := http.StatusBadRequest
		if code == "ACCOUNT_EMAIL_TAKEN" {
			status = http.StatusConflict
		}
		if code != "ACCOUNT_EMAIL_TAKEN" && code != "PASSWORD_TOO_SHORT" {
			errutil.LogError(h.logger, "signup failed", err)
		}
		h.render(w, status, "signup", map[string]any{
			"Title": "Sign up",
			"Email": form.Email,
			"Error": formMessage(code),
		})
		return
	}

	h.countSignup()
	h.sendVerification(r, account)
	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// sendVerification issues a verification token and emails the link. Failures
// are logged and never surfaced to the request.
func (h *Handlers) sendVerification(r *http.Request, account *auth.Account) {
	rawToken, err := h.verifier.RequestVerification(r.Context(), account.ID)
	if err != nil {
		errutil.LogError(h.logger, "issue verification token failed", err)
		h.countEmail("email_verification", "failure")
		return
	}
	verifyURL := h.absoluteURL("/verify-email?token=" + rawToken)
	if sendErr := h.mailer.SendEmailVerification(account.Email, verifyURL); sendErr != nil {
		errutil.LogError(h.logger, "send verification email failed", sendErr)
		h.countEmail("email_verification", "failure")
		return
	}
	h.countEmail("email_verification", "success")
}

// Logout clears the session cookie for this browser only.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ForgotPasswordPage renders the request form, or the sent notice.
func (h *Handlers) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "forgot_password", map[string]any{
		"Title": "Forgot password",
		"Sent":  r.URL.Query().Get("sent") == "1",
	})
}

// ForgotPassword requests a reset link. Known and unknown addresses both
// redirect to the same sent page so the response enumerates nothing.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "forgot_password", map[string]any{
			"Title": "Forgot password",
			"Error": formMessage("FORM_PARSE_FAILED"),
		})
		return
	}
	email := r.PostFormValue("email")
	if email == "" {
		h.render(w, http.StatusBadRequest, "forgot_password", map[string]any{
			"Title": "Forgot password",
			"Error": formMessage("FORM_MISSING_EMAIL"),
		})
		return
	}

	identity := limiterIdentity(email)
	ip := clientIP(r)
	if h.limiter.IsLimited(r.Context(), identity, ip) {
		// Redirect anyway: a limited response here would leak attempt counts.
		h.countRateLimited("forgot_password")
		http.Redirect(w, r, "/forgot-password?sent=1", http.StatusSeeOther)
		return
	}
	h.limiter.Record(r.Context(), identity, ip, true)

	rawToken, err := h.resets.RequestReset(r.Context(), email)
	if err != nil {
		errutil.LogError(h.logger, "request password reset failed", err)
	}
	if err == nil && rawToken != "" {
		resetURL := h.absoluteURL("/reset-password?token=" + rawToken)
		if sendErr := h.mailer.SendPasswordReset(identity, resetURL); sendErr != nil {
			errutil.LogError(h.logger, "send reset email failed", sendErr)
			h.countEmail("password_reset", "failure")
		} else {
			h.countEmail("password_reset", "success")
		}
	}

	http.Redirect(w, r, "/forgot-password?sent=1", http.StatusSeeOther)
}

// ResetPasswordPage renders the new-password form for a token link.
func (h *Handlers) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "reset_password", map[string]any{
		"Title": "Reset password",
		"Token": r.URL.Query().Get("token"),
	})
}

// ResetPassword redeems the token and installs the new password. Unknown,
// expired, and consumed tokens get the same message.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "reset_password", map[string]any{
			"Title": "Reset password",
			"Error": formMessage("FORM_PARSE_FAILED"),
		})
		return
	}
	token := r.PostFormValue("token")
	password := r.PostFormValue("password")

	if err := h.resets.ResetPassword(r.Context(), token, password); err != nil {
		code := errCode(err)
		status := http.StatusBadRequest
		switch {
		case code == "PASSWORD_TOO_SHORT":
		case errors.Is(err, auth.ErrInvalidToken):
			code = "TOKEN_INVALID"
		default:
			// Infra failure, not a bad link: log the detail, show the
			// generic failure page.
			errutil.LogError(h.logger, "reset password failed", err)
			status = http.StatusInternalServerError
		}
		h.render(w, status, "reset_password", map[string]any{
			"Title": "Reset password",
			"Token": token,
			"Error": formMessage(code),
		})
		return
	}

	http.Redirect(w, r, "/login?reset=1", http.StatusSeeOther)
}

// VerifyEmail redeems a verification token from the emailed link.
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.render(w, http.StatusBadRequest, "verify_email", map[string]any{
			"Title": "Email verification",
			"Error": formMessage("TOKEN_INVALID"),
		})
		return
	}
	if err := h.verifier.Verify(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			h.render(w, http.StatusBadRequest, "verify_email", map[string]any{
				"Title": "Email verification",
				"Error": formMessage("TOKEN_INVALID"),
			})
			return
		}
		errutil.LogError(h.logger, "verify email failed", err)
		h.render(w, http.StatusInternalServerError, "verify_email", map[string]any{
			"Title": "Email verification",
			"Error": formMessage(errCode(err)),
		})
		return
	}
	h.render(w, http.StatusOK, "verify_email", map[string]any{
		"Title": "Email verification",
	})
}
