package lode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"syscall"
)

// Storage failure kinds. Match with errors.Is on a *StorageError.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrDiskFull         = errors.New("no space left on device")
	ErrTimeout          = errors.New("operation timed out")
	ErrThrottled        = errors.New("rate limited")
	// ErrAuth is a credential failure: missing, expired or rejected keys.
	ErrAuth = errors.New("authentication failed")
	// ErrAccessDenied is an authorization failure with valid credentials.
	ErrAccessDenied = errors.New("access denied")
	ErrNetwork      = errors.New("network error")
	ErrUnclassified = errors.New("storage error")
)

// Op names the dataset operation that failed.
type Op string

const (
	OpWriteReads   Op = "write reads"
	OpWriteMetrics Op = "write metrics"
	OpWriteFile    Op = "write file"
	OpRead         Op = "read"
	OpInit         Op = "init"
)

// StorageError is a classified dataset failure. The cause stays in the
// chain for errors.As.
type StorageError struct {
	Kind error
	Op   Op
	// Path is the partition, object key or dataset involved, if known.
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches the error's kind.
func (e *StorageError) Is(target error) bool { return e.Kind == target }

// Wrap classifies err and records the operation. It returns nil for a nil
// err.
func Wrap(op Op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: Classify(err), Op: op, Path: path, Err: err}
}

// Retryable reports whether err is a storage failure that may pass on a
// later attempt of the same run.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrThrottled) || errors.Is(err, ErrNetwork)
}

// apiError is the code-carrying shape of S3 service errors.
type apiError interface {
	ErrorCode() string
}

var apiCodes = map[string]error{
	"NoSuchKey":             ErrNotFound,
	"NoSuchBucket":          ErrNotFound,
	"NotFound":              ErrNotFound,
	"AccessDenied":          ErrAccessDenied,
	"AllAccessDisabled":     ErrAccessDenied,
	"Forbidden":             ErrAccessDenied,
	"SlowDown":              ErrThrottled,
	"Throttling":            ErrThrottled,
	"ThrottlingException":   ErrThrottled,
	"RequestLimitExceeded":  ErrThrottled,
	"TooManyRequests":       ErrThrottled,
	"RequestTimeout":        ErrTimeout,
	"InvalidAccessKeyId":    ErrAuth,
	"SignatureDoesNotMatch": ErrAuth,
	"ExpiredToken":          ErrAuth,
	"TokenRefreshRequired":  ErrAuth,
}

// messageRules classify errors that arrive as plain text, for example
// from wrapped store implementations. First match wins; patterns are
// lowercase.
var messageRules = []struct {
	kind     error
	patterns []string
}{
	{ErrAccessDenied, []string{"accessdenied", "forbidden", "403"}},
	{ErrPermissionDenied, []string{"permission denied", "eacces", "access denied"}},
	{ErrNotFound, []string{"no such file", "does not exist", "not found", "nosuchkey", "nosuchbucket", "404"}},
	{ErrDiskFull, []string{"no space left", "disk full", "quota exceeded"}},
	{ErrTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ErrThrottled, []string{"slowdown", "reduce your request rate", "rate exceeded", "throttl", "429", "toomanyrequests"}},
	{ErrAuth, []string{"nocredentialproviders", "credentials", "invalidaccesskeyid", "signaturedoesnotmatch", "expiredtoken", "401", "unauthorized"}},
	{ErrNetwork, []string{"connection refused", "connection reset", "no route to host", "network is unreachable", "no such host", "dial tcp"}},
}

// Classify returns the failure kind of err. Typed errors from the
// filesystem, context, network and S3 are checked before message text.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, syscall.ENOSPC):
		return ErrDiskFull
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}

	var ae apiError
	if errors.As(err, &ae) {
		if kind, ok := apiCodes[ae.ErrorCode()]; ok {
			return kind
		}
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return ErrTimeout
		}
		return ErrNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, p := range rule.patterns {
			if strings.Contains(msg, p) {
				return rule.kind
			}
		}
	}
	return ErrUnclassified
}
