package services

import (
	"context"
	"net/mail"
	"time"

	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

// UserService is the identity directory: each email maps to exactly one
// authorized wallet address. Bindings are created at registration and are
// immutable afterwards.
type UserService struct {
	userRepo repository.Repository
}

func NewUserService(dbSelector repository.DBSelector) *UserService {
	db, err := dbSelector.ChooseDB(repository.Users)
	if err != nil {
		panic(err)
	}
	return &UserService{
		userRepo: db,
	}
}

// Register creates a new (email, wallet) binding. The email is the storage
// key, so an email can never hold two wallets.
func (us *UserService) Register(email, walletAddress string) (*types.User, error) {
	emailLc := util.NormalizeEmail(email)
	walletLc := util.NormalizeWalletAddress(walletAddress)

	if _, err := mail.ParseAddress(emailLc); err != nil {
		return nil, types.ErrInvalidEmail
	}
	if !util.IsValidWalletAddress(walletLc) {
		return nil, types.ErrInvalidWalletAddress
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, gErr := us.userRepo.GetByID(ctx, emailLc)
	if gErr == nil {
		return nil, types.ErrUserExists
	}
	if gErr != types.ErrNotFound {
		return nil, gErr
	}

	user := &types.User{
		Email:         emailLc,
		WalletAddress: walletLc,
		Created:       time.Now().UTC().UnixMilli(),
	}
	user.ID = emailLc
	if sErr := us.userRepo.Save(ctx, emailLc, user); sErr != nil {
		if sErr == types.ErrConflict {
			// concurrent registration of the same email
			return nil, types.ErrUserExists
		}
		return nil, sErr
	}
	return user, nil
}

// GetByEmail returns the binding for an email address
func (us *UserService) GetByEmail(email string) (*types.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	resp, err := us.userRepo.GetByID(ctx, util.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	var user types.User
	if mErr := repository.MapToObject(resp, &user); mErr != nil {
		return nil, mErr
	}
	return &user, nil
}

// CheckBinding reports whether the email is registered and whether the
// supplied wallet matches the registered one
func (us *UserService) CheckBinding(email, walletAddress string) (found bool, match bool, expectedWallet string, err error) {
	user, gErr := us.GetByEmail(email)
	if gErr != nil {
		if gErr == types.ErrNotFound {
			return false, false, "", nil
		}
		return false, false, "", gErr
	}
	expected := util.NormalizeWalletAddress(user.WalletAddress)
	return true, expected == util.NormalizeWalletAddress(walletAddress), expected, nil
}
