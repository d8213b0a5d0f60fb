package services

import (
	"context"
	"errors"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/walletsign/go-walletsign-server/email"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/types"
)

const (
	testEmail  = "alice@example.com"
	testWallet = "0x52908400098527886e0f7030069857d2e4169ee7"
)

// captureSender records outgoing mail so tests can read the plaintext code
type captureSender struct {
	mu   sync.Mutex
	last *types.Mail
	fail bool
}

func (c *captureSender) Send(ctx context.Context, msg *types.Mail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = msg
	if c.fail {
		return errors.New("delivery failed")
	}
	return nil
}

var codeRe = regexp.MustCompile(`\d{6}`)

func (c *captureSender) lastCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return ""
	}
	return codeRe.FindString(c.last.BodyHTML)
}

var testSender = &captureSender{}

func TestMain(m *testing.M) {
	global.Conf.Email.Provider = "test"
	global.Conf.Email.From = "noreply@walletsign.io"
	global.Conf.Email.FromName = "WalletSign"
	email.RegisterSender("test", testSender)
	os.Exit(m.Run())
}

func newOtpFixture(t *testing.T) (*fakeSelector, *OtpService) {
	t.Helper()
	selector := newFakeSelector()
	us := NewUserService(selector)
	if _, err := us.Register(testEmail, testWallet); err != nil {
		t.Fatal(err)
	}
	testSender.fail = false
	return selector, NewOtpService(selector)
}

func TestRequestAndVerifyChallenge(t *testing.T) {
	_, svc := newOtpFixture(t)

	challenge, err := svc.RequestChallenge(testEmail, testWallet)
	assert.NoError(t, err)
	assert.NotEmpty(t, challenge.ID)
	assert.NotEmpty(t, challenge.Salt)

	code := testSender.lastCode()
	assert.Len(t, code, 6)
	assert.NotContains(t, challenge.CodeHash, code)

	assert.NoError(t, svc.VerifyChallenge(testEmail, testWallet, code))

	// single use: the consumed challenge is gone
	assert.Equal(t, types.ErrNoActiveCode, svc.VerifyChallenge(testEmail, testWallet, code))
}

func TestRequestChallengeUnknownIdentity(t *testing.T) {
	_, svc := newOtpFixture(t)

	_, err := svc.RequestChallenge("nobody@example.com", testWallet)
	assert.Equal(t, types.ErrNotFound, err)

	// a wallet that is not the bound one reads the same as an unknown identity
	_, err = svc.RequestChallenge(testEmail, "0xde709f2102306220921060314715629080e2fb77")
	assert.Equal(t, types.ErrNotFound, err)
}

func TestNewChallengeInvalidatesPrevious(t *testing.T) {
	_, svc := newOtpFixture(t)

	_, err := svc.RequestChallenge(testEmail, testWallet)
	assert.NoError(t, err)
	firstCode := testSender.lastCode()

	_, err = svc.RequestChallenge(testEmail, testWallet)
	assert.NoError(t, err)
	secondCode := testSender.lastCode()

	if firstCode == secondCode {
		t.Skip("codes collided, cannot distinguish challenges")
	}
	assert.Equal(t, types.ErrInvalidCode, svc.VerifyChallenge(testEmail, testWallet, firstCode))
	assert.NoError(t, svc.VerifyChallenge(testEmail, testWallet, secondCode))
}

func TestVerifyAttemptLimit(t *testing.T) {
	_, svc := newOtpFixture(t)

	_, err := svc.RequestChallenge(testEmail, testWallet)
	assert.NoError(t, err)
	code := testSender.lastCode()

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < global.Conf.Otp.Attempts()-1; i++ {
		assert.Equal(t, types.ErrInvalidCode, svc.VerifyChallenge(testEmail, testWallet, wrong))
	}
	// the attempt that reaches the cap is already rate limited
	assert.Equal(t, types.ErrTooManyAttempts, svc.VerifyChallenge(testEmail, testWallet, wrong))

	// the cap also locks out the correct code
	assert.Equal(t, types.ErrTooManyAttempts, svc.VerifyChallenge(testEmail, testWallet, code))
}

func TestConcurrentWrongCodeStorm(t *testing.T) {
	_, svc := newOtpFixture(t)

	_, err := svc.RequestChallenge(testEmail, testWallet)
	assert.NoError(t, err)
	code := testSender.lastCode()

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// the attempt cap must hold under parallel submissions of a wrong code
	const n = 10
	results := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.VerifyChallenge(testEmail, testWallet, wrong)
		}()
	}
	wg.Wait()
	close(results)

	invalid, limited := 0, 0
	for vErr := range results {
		switch vErr {
		case types.ErrInvalidCode:
			invalid++
		case types.ErrTooManyAttempts:
			limited++
		default:
			t.Fatalf("unexpected error: %v", vErr)
		}
	}
	assert.Equal(t, global.Conf.Otp.Attempts()-1, invalid)
	assert.Equal(t, n-invalid, limited)

	// the burned challenge locks out the correct code as well
	assert.Equal(t, types.ErrTooManyAttempts, svc.VerifyChallenge(testEmail, testWallet, code))
}

func TestVerifyExpiredChallenge(t *testing.T) {
	selector, svc := newOtpFixture(t)

	challenge, err := svc.RequestChallenge(testEmail, testWallet)
	assert.NoError(t, err)
	code := testSender.lastCode()

	expireChallenge(t, selector, challenge.ID)
	assert.Equal(t, types.ErrCodeExpired, svc.VerifyChallenge(testEmail, testWallet, code))
}

func TestVerifyWithoutChallenge(t *testing.T) {
	_, svc := newOtpFixture(t)
	assert.Equal(t, types.ErrNoActiveCode, svc.VerifyChallenge(testEmail, testWallet, "123456"))
}

func TestDeliveryFailureKeepsChallengeValid(t *testing.T) {
	_, svc := newOtpFixture(t)

	testSender.fail = true
	challenge, err := svc.RequestChallenge(testEmail, testWallet)
	assert.Error(t, err)
	assert.NotNil(t, challenge)
	testSender.fail = false

	code := testSender.lastCode()
	assert.NoError(t, svc.VerifyChallenge(testEmail, testWallet, code))
}

func TestRemoveExpiredChallenges(t *testing.T) {
	selector, svc := newOtpFixture(t)

	challenge, err := svc.RequestChallenge(testEmail, testWallet)
	assert.NoError(t, err)
	code := testSender.lastCode()

	expireChallenge(t, selector, challenge.ID)
	assert.NoError(t, svc.RemoveExpiredChallenges())

	// the row is deleted, not just invalid
	assert.Equal(t, types.ErrNoActiveCode, svc.VerifyChallenge(testEmail, testWallet, code))
}

// rewrites the stored challenge with an expiry in the past
func expireChallenge(t *testing.T, selector *fakeSelector, challengeID string) {
	t.Helper()
	repo, err := selector.ChooseDB(repository.Otp)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	resp, gErr := repo.GetByID(ctx, challengeID)
	if gErr != nil {
		t.Fatal(gErr)
	}
	var challenge types.OtpChallenge
	if mErr := repository.MapToObject(resp, &challenge); mErr != nil {
		t.Fatal(mErr)
	}
	challenge.ExpiresAt = time.Now().UTC().Add(-time.Minute).UnixMilli()
	if sErr := repo.Save(ctx, challenge.ID, &challenge); sErr != nil {
		t.Fatal(sErr)
	}
}
