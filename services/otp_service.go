package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/walletsign/go-walletsign-server/email"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

// OtpService issues and verifies one-time passcode challenges bound to a
// registered (email, wallet) pair. Plaintext codes leave the process only
// inside the delivery email, storage holds the salted hash.
type OtpService struct {
	otpRepo     repository.Repository
	userService *UserService
}

func NewOtpService(dbSelector repository.DBSelector) *OtpService {
	otpRepo, err := dbSelector.ChooseDB(repository.Otp)
	if err != nil {
		panic(err)
	}
	return &OtpService{
		otpRepo:     otpRepo,
		userService: NewUserService(dbSelector),
	}
}

// RequestChallenge creates a fresh challenge for the pair and emails the
// plaintext code. All earlier unused challenges of the pair are invalidated
// first, so at most one challenge is active at any time. A delivery failure
// is returned to the caller but leaves the stored challenge valid.
func (os *OtpService) RequestChallenge(emailAddr, walletAddress string) (*types.OtpChallenge, error) {
	emailLc := util.NormalizeEmail(emailAddr)
	walletLc := util.NormalizeWalletAddress(walletAddress)

	user, uErr := os.userService.GetByEmail(emailLc)
	if uErr != nil {
		return nil, uErr
	}
	if util.NormalizeWalletAddress(user.WalletAddress) != walletLc {
		// an unbound wallet is indistinguishable from an unknown identity
		return nil, types.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if iErr := os.invalidateChallenges(ctx, emailLc, walletLc); iErr != nil {
		return nil, iErr
	}

	code, cErr := util.GenerateOtpCode(global.Conf.Otp.Length())
	if cErr != nil {
		return nil, cErr
	}
	salt, sErr := util.GenerateSalt(16)
	if sErr != nil {
		return nil, sErr
	}

	now := time.Now().UTC()
	challenge := &types.OtpChallenge{
		Email:         emailLc,
		WalletAddress: walletLc,
		CodeHash:      util.HashOtpCode(code, salt),
		Salt:          salt,
		Used:          false,
		Attempts:      0,
		ExpiresAt:     now.Add(time.Duration(global.Conf.Otp.Expiry()) * time.Minute).UnixMilli(),
		Created:       now.UnixMilli(),
	}
	challenge.ID = uuid.NewString()

	if svErr := os.otpRepo.Save(ctx, challenge.ID, challenge); svErr != nil {
		return nil, svErr
	}

	if dErr := os.deliverCode(ctx, emailLc, code); dErr != nil {
		level.Error(global.Logger).Log("msg", "failed to deliver otp email", "err", dErr)
		return challenge, dErr
	}
	return challenge, nil
}

// VerifyChallenge checks a submitted code against the newest unused challenge
// of the pair. A matching code consumes the challenge, a mismatch burns one
// attempt. Expiry is enforced lazily here rather than by the purge job.
func (os *OtpService) VerifyChallenge(emailAddr, walletAddress, code string) error {
	emailLc := util.NormalizeEmail(emailAddr)
	walletLc := util.NormalizeWalletAddress(walletAddress)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// every rev conflict means another writer burned an attempt or consumed
	// the challenge, so the attempt cap bounds the retries
	for attempt := 0; attempt <= global.Conf.Otp.Attempts(); attempt++ {
		challenge, fErr := os.activeChallenge(ctx, emailLc, walletLc)
		if fErr != nil {
			return fErr
		}
		if time.Now().UTC().UnixMilli() > challenge.ExpiresAt {
			return types.ErrCodeExpired
		}
		if challenge.Attempts >= global.Conf.Otp.Attempts() {
			return types.ErrTooManyAttempts
		}

		if !util.SecureCompare(util.HashOtpCode(code, challenge.Salt), challenge.CodeHash) {
			challenge.Attempts++
			if svErr := os.otpRepo.Save(ctx, challenge.ID, challenge); svErr != nil {
				if svErr == types.ErrConflict {
					// concurrent attempt bumped the counter, re-read and retry
					continue
				}
				return svErr
			}
			// increment-and-check: the attempt that reaches the cap is already rate limited
			if challenge.Attempts >= global.Conf.Otp.Attempts() {
				return types.ErrTooManyAttempts
			}
			return types.ErrInvalidCode
		}

		challenge.Used = true
		if svErr := os.otpRepo.Save(ctx, challenge.ID, challenge); svErr != nil {
			if svErr == types.ErrConflict {
				continue
			}
			return svErr
		}
		return nil
	}
	return types.ErrInternal
}

// RemoveExpiredChallenges deletes challenge rows whose expiry has passed.
// Runs from the cron scheduler, verification never depends on it.
func (os *OtpService) RemoveExpiredChallenges() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"expiresAt": map[string]interface{}{"$lt": time.Now().UTC().UnixMilli()},
		},
		"limit": 500,
	}
	resp, fErr := os.otpRepo.Find(ctx, query)
	if fErr != nil {
		return fErr
	}
	var found types.CouchDBFindResponse
	if mErr := repository.MapToObject(resp, &found); mErr != nil {
		return mErr
	}
	if len(found.Docs) == 0 {
		return nil
	}

	deletions := make([]interface{}, 0, len(found.Docs))
	for _, raw := range found.Docs {
		var challenge types.OtpChallenge
		if mErr := repository.MapToObject(raw, &challenge); mErr != nil {
			return mErr
		}
		challenge.Deleted = true
		deletions = append(deletions, &challenge)
	}
	if bErr := os.otpRepo.BulkUpdate(ctx, deletions); bErr != nil {
		return bErr
	}
	level.Info(global.Logger).Log("msg", "purged expired otp challenges", "count", len(deletions))
	return nil
}

// activeChallenge returns the newest unused challenge of the pair
func (os *OtpService) activeChallenge(ctx context.Context, emailLc, walletLc string) (*types.OtpChallenge, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"email":         emailLc,
			"walletAddress": walletLc,
			"used":          false,
		},
		"sort":  []map[string]string{{"created": "desc"}},
		"limit": 1,
	}
	resp, fErr := os.otpRepo.Find(ctx, query)
	if fErr != nil {
		return nil, fErr
	}
	var found types.CouchDBFindResponse
	if mErr := repository.MapToObject(resp, &found); mErr != nil {
		return nil, mErr
	}
	if len(found.Docs) == 0 {
		return nil, types.ErrNoActiveCode
	}
	var challenge types.OtpChallenge
	if mErr := repository.MapToObject(found.Docs[0], &challenge); mErr != nil {
		return nil, mErr
	}
	return &challenge, nil
}

// invalidateChallenges marks every unused challenge of the pair as used.
// A bulk write can lose individual rows to a concurrent writer, so a
// surfaced conflict re-reads and retries until the pair holds no unused rows.
func (os *OtpService) invalidateChallenges(ctx context.Context, emailLc, walletLc string) error {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"email":         emailLc,
			"walletAddress": walletLc,
			"used":          false,
		},
		"limit": 100,
	}
	for attempt := 0; attempt < 3; attempt++ {
		resp, fErr := os.otpRepo.Find(ctx, query)
		if fErr != nil {
			return fErr
		}
		var found types.CouchDBFindResponse
		if mErr := repository.MapToObject(resp, &found); mErr != nil {
			return mErr
		}
		if len(found.Docs) == 0 {
			return nil
		}

		updates := make([]interface{}, 0, len(found.Docs))
		for _, raw := range found.Docs {
			var challenge types.OtpChallenge
			if mErr := repository.MapToObject(raw, &challenge); mErr != nil {
				return mErr
			}
			challenge.Used = true
			updates = append(updates, &challenge)
		}
		if bErr := os.otpRepo.BulkUpdate(ctx, updates); bErr != nil {
			if bErr == types.ErrConflict {
				continue
			}
			return bErr
		}
		return nil
	}
	return types.ErrConflict
}

// deliverCode emails the plaintext code through the configured provider
func (os *OtpService) deliverCode(ctx context.Context, emailLc, code string) error {
	if global.Conf.Email.From == "" {
		return types.ErrMisconfigured
	}
	sender := email.GetSender(global.Conf.Email.Provider)
	if sender == nil {
		return types.ErrMisconfigured
	}
	html := fmt.Sprintf("<p>Your verification code is:</p>"+
		"<p style=\"font-size:24px\"><b>%s</b></p>"+
		"<p>The code expires in %d minutes.</p>", code, global.Conf.Otp.Expiry())
	return sender.Send(ctx, &types.Mail{
		From:     global.Conf.Email.From,
		FromName: global.Conf.Email.FromName,
		To:       emailLc,
		Subject:  "Your verification code",
		BodyHTML: html,
	})
}
