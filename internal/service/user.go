package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"

	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
	"github.com/aaoeclipse/serverless-qr-manager/internal/utils"
	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

// CognitoAPI is the slice of the Cognito client the user service uses.
type CognitoAPI interface {
	AdminCreateUser(ctx context.Context, params *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cognitoidentityprovider.AdminSetUserPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type UserService struct {
	logger   *logrus.Logger
	profiles store.ProfileStore
	cognito  CognitoAPI

	userPoolID string
	clientID   string

	newID func() string
	now   func() time.Time
}

func NewUserService(logger *logrus.Logger, profiles store.ProfileStore, cognito CognitoAPI, userPoolID, clientID string) *UserService {
	return &UserService{
		logger:     logger,
		profiles:   profiles,
		cognito:    cognito,
		userPoolID: userPoolID,
		clientID:   clientID,
		newID:      utils.NanoID,
		now:        time.Now,
	}
}

// Session is the result of a successful login.
type Session struct {
	IDToken     string `json:"token"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int32  `json:"expiresIn"`
}

func validateSignupInput(email, password string) error {
	fields := make(map[string]string)
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return &types.ValidationError{Fields: fields}
	}
	return nil
}

// Signup registers the tenant with Cognito and writes the profile item.
// The Cognito subject identifier becomes the tenant id.
func (s *UserService) Signup(ctx context.Context, email, password string) (*types.Profile, error) {
	if err := validateSignupInput(email, password); err != nil {
		return nil, err
	}

	created, err := s.cognito.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(email),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
		},
		MessageAction: ctypes.MessageActionTypeSuppress,
	})
	if err != nil {
		var exists *ctypes.UsernameExistsException
		if errors.As(err, &exists) {
			return nil, types.NewValidationError("email", "already registered")
		}
		return nil, fmt.Errorf("create cognito user: %w: %w", types.ErrUpstream, err)
	}

	tenantID := subjectOf(created.User)
	if tenantID == "" {
		return nil, fmt.Errorf("cognito user missing sub attribute: %w", types.ErrUpstream)
	}

	_, err = s.cognito.AdminSetUserPassword(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(email),
		Password:   aws.String(password),
		Permanent:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("set cognito password: %w: %w", types.ErrUpstream, err)
	}

	profile := &types.Profile{
		ID:                 tenantID,
		Email:              email,
		CreatedAt:          s.now(),
		Tier:               types.TierFree,
		Directory:          s.newID(),
		SubscriptionStatus: types.SubscriptionNone,
	}

	if err := s.profiles.Put(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
	}).Info("tenant signed up")

	return profile, nil
}

// Login authenticates against Cognito and returns the session tokens.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := s.cognito.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		var notAuthorized *ctypes.NotAuthorizedException
		var notFound *ctypes.UserNotFoundException
		if errors.As(err, &notAuthorized) || errors.As(err, &notFound) {
			return nil, types.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("initiate auth: %w: %w", types.ErrUpstream, err)
	}

	result := resp.AuthenticationResult
	if result == nil || result.IdToken == nil {
		return nil, types.ErrInvalidCredentials
	}

	return &Session{
		IDToken:     aws.ToString(result.IdToken),
		AccessToken: aws.ToString(result.AccessToken),
		ExpiresIn:   result.ExpiresIn,
	}, nil
}

// Profile returns the tenant's profile record.
func (s *UserService) Profile(ctx context.Context, tenantID string) (*types.Profile, error) {
	return s.profiles.Get(ctx, tenantID)
}

func subjectOf(user *ctypes.UserType) string {
	if user == nil {
		return ""
	}
	for _, attr := range user.Attributes {
		if aws.ToString(attr.Name) == "sub" {
			return aws.ToString(attr.Value)
		}
	}
	return ""
}
