package session

import (
	"github.com/dmitrymomot/geodash/pkg/statemachine"
	"github.com/dmitrymomot/geodash/pkg/store"
)

// User is the account record returned by the backend.
type User struct {
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Phase is the position of the session in its lifecycle.
type Phase string

const (
	PhaseAnonymous      Phase = "anonymous"
	PhaseAuthenticating Phase = "authenticating"
	PhaseAuthenticated  Phase = "authenticated"
)

// Trigger is a lifecycle event.
type Trigger string

const (
	TriggerBegin   Trigger = "begin"
	TriggerSucceed Trigger = "succeed"
	TriggerFail    Trigger = "fail"
	TriggerSignOut Trigger = "sign_out"
	TriggerExpire  Trigger = "expire"
	TriggerRestore Trigger = "restore"
)

// lifecycle declares the session transitions. Begin, succeed and fail are
// accepted from every phase: concurrent operations are not sequenced, so the
// last response to resolve decides the phase.
var lifecycle = statemachine.MustNew(PhaseAnonymous,
	statemachine.WithTransitionFrom(PhaseAuthenticating, TriggerBegin,
		PhaseAnonymous, PhaseAuthenticating, PhaseAuthenticated),
	statemachine.WithTransitionFrom(PhaseAuthenticated, TriggerSucceed,
		PhaseAuthenticating, PhaseAnonymous, PhaseAuthenticated),
	statemachine.WithTransitionFrom(PhaseAnonymous, TriggerFail,
		PhaseAuthenticating, PhaseAnonymous, PhaseAuthenticated),
	statemachine.WithTransitionFrom(PhaseAnonymous, TriggerSignOut,
		PhaseAuthenticated, PhaseAuthenticating, PhaseAnonymous),
	statemachine.WithTransitionFrom(PhaseAnonymous, TriggerExpire,
		PhaseAuthenticated, PhaseAuthenticating, PhaseAnonymous),
	statemachine.WithTransition(PhaseAnonymous, PhaseAuthenticated, TriggerRestore),
)

// AuthState is the session slice of client state.
// IsAuthenticated matches User presence except while a login or register
// call is in flight (Phase == PhaseAuthenticating).
type AuthState struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	CSRFToken       string `json:"-"`
	Phase           Phase  `json:"phase"`
}

// HasToken reports whether a CSRF token is cached.
func (s AuthState) HasToken() bool {
	return s.CSRFToken != ""
}

// AuthPatch is a shallow update of AuthState; unset fields are left untouched.
type AuthPatch struct {
	User            store.Field[*User]
	IsAuthenticated store.Field[bool]
	CSRFToken       store.Field[string]
	Phase           store.Field[Phase]
}

// Apply replaces the fields set in p.
func (p AuthPatch) Apply(s AuthState) AuthState {
	s.User = p.User.Or(s.User)
	s.IsAuthenticated = p.IsAuthenticated.Or(s.IsAuthenticated)
	s.CSRFToken = p.CSRFToken.Or(s.CSRFToken)
	s.Phase = p.Phase.Or(s.Phase)
	return s
}

// InitialState is the anonymous state a manager starts in.
func InitialState() AuthState {
	return AuthState{Phase: lifecycle.Initial()}
}

// signedIn stores u as the authenticated user.
func signedIn(u *User) AuthPatch {
	return AuthPatch{User: store.Set(u), IsAuthenticated: store.Set(true)}
}

// signedOut drops the user and keeps the token.
func signedOut() AuthPatch {
	return AuthPatch{User: store.Clear[*User](), IsAuthenticated: store.Set(false)}
}

// clearedSession drops identity and token together.
func clearedSession() AuthPatch {
	p := signedOut()
	p.CSRFToken = store.Clear[string]()
	return p
}
