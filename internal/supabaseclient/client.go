package supabaseclient

import (
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/supabase-community/supabase-go"
)

const (
	EnvURL = "SUPABASE_URL"
	EnvKey = "SUPABASE_KEY"
)

var (
	ErrMissingURL = errors.New(EnvURL + " is not set")
	ErrMissingKey = errors.New(EnvKey + " is not set")
)

// Credentials identify a Supabase project.
type Credentials struct {
	URL string
	Key string
}

func (c Credentials) Validate() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	if c.Key == "" {
		return ErrMissingKey
	}

	return validation.ValidateStruct(&c,
		validation.Field(&c.URL,
			is.URL,
			validation.By(func(value interface{}) error {
				u, _ := value.(string)
				if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
					return validation.NewError("validation_invalid_scheme", "must use http or https scheme")
				}
				return nil
			}),
		),
	)
}

// CredentialsFromEnv reads SUPABASE_URL and SUPABASE_KEY.
func CredentialsFromEnv() (Credentials, error) {
	c := Credentials{
		URL: os.Getenv(EnvURL),
		Key: os.Getenv(EnvKey),
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// New builds a client from the environment. The environment is read on every
// call and every call returns a new client.
func New() (*supabase.Client, error) {
	creds, err := CredentialsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("supabase credentials: %w", err)
	}
	return NewWithCredentials(creds)
}

func NewWithCredentials(creds Credentials) (*supabase.Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("supabase credentials: %w", err)
	}

	client, err := supabase.NewClient(creds.URL, creds.Key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return client, nil
}
