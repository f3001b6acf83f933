package tui

import (
	"errors"
	"testing"

	"github.com/mark3labs/taskdeck/internal/session"
)

func TestAuthForm_RequiresCredentials(t *testing.T) {
	f := NewAuthForm()
	if cmd := f.Update(key("enter")); cmd != nil {
		t.Error("empty form should not submit")
	}
	if f.Error() != "Username and password are required" {
		t.Errorf("error = %q", f.Error())
	}
}

func TestAuthForm_SubmitLogin(t *testing.T) {
	f := NewAuthForm()
	f.inputs[fieldUsername].SetValue(" alice ")
	f.inputs[fieldPassword].SetValue("secret")

	cmd := f.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected submit")
	}
	msg, ok := cmd().(AuthSubmitMsg)
	if !ok || msg.Mode != AuthLogin {
		t.Fatalf("msg = %#v", msg)
	}
	if msg.Credentials.Username != "alice" || msg.Credentials.Password != "secret" {
		t.Errorf("credentials = %+v", msg.Credentials)
	}
}

func TestAuthForm_SubmitRegister(t *testing.T) {
	f := NewAuthForm()
	f.Update(key("ctrl+r"))
	if f.Mode() != AuthRegister {
		t.Fatal("ctrl+r should switch to register")
	}
	f.inputs[fieldUsername].SetValue("bob")
	f.inputs[fieldPassword].SetValue("pw")
	f.inputs[fieldName].SetValue("Bob")

	msg := f.Update(key("enter"))().(AuthSubmitMsg)
	reg := msg.Registration
	if reg.Username != "bob" || reg.Name == nil || *reg.Name != "Bob" || reg.Email != nil {
		t.Errorf("registration = %+v", reg)
	}
}

func TestAuthForm_ShowsServerMessage(t *testing.T) {
	f := NewAuthForm()
	f.SetError(&session.AuthError{Op: session.OpLogin, Message: "Invalid username or password", Err: errors.New("401")})
	if f.Error() != "Invalid username or password" {
		t.Errorf("error = %q", f.Error())
	}
	f.SetError(errors.New("dial tcp: refused"))
	if f.Error() != "dial tcp: refused" {
		t.Errorf("error = %q", f.Error())
	}
}
