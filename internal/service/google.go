package service

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is what a verified Google ID token says about the user.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks a Google ID token.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

type idTokenVerifier struct {
	clientID string
}

// NewGoogleVerifier validates tokens issued for clientID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &idTokenVerifier{clientID: clientID}
}

func (v *idTokenVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("google token has no email")
	}
	name, _ := payload.Claims["name"].(string)
	return &GoogleIdentity{Subject: payload.Subject, Email: email, Name: name}, nil
}
