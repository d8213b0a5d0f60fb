package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/walletsign/go-walletsign-server/email"
	"github.com/walletsign/go-walletsign-server/email/sendgrid"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/services"
	"github.com/walletsign/go-walletsign-server/types"
)

// Register external email providers from config (currently only sendgrid)
func RegisterEmailSenders(conf *global.Config) {
	if conf.Email.Provider == "sendgrid" {
		email.RegisterSender("sendgrid", sendgrid.NewSendgridSender(conf.Email.ApiKey))
	}
}

// Configure DB Repositories and create DB Selector
func ConfigDBSelector() repository.DBSelector {
	// configure Repository (couchDB)
	repoUrl := global.Conf.CouchDB.Scheme + "://" + global.Conf.CouchDB.Host + ":" + strconv.Itoa(global.Conf.CouchDB.Port)
	userRepo, userRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Users, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	documentRepo, documentRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Documents, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	otpRepo, otpRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Otp, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)

	repoErr := errors.Join(userRepoErr, documentRepoErr, otpRepoErr)
	if repoErr != nil {
		global.Logger.Log("error", "Failed to create repositories", "error", repoErr.Error())
		panic(repoErr)
	}

	// REPOSITORY definitions
	dbSelector := repository.NewCouchDBSelector()
	dbSelector.AddDB(userRepo)
	dbSelector.AddDB(documentRepo)
	dbSelector.AddDB(otpRepo)

	return dbSelector
}

func ConfigDBIndexing(dbSelector *repository.CouchDBSelector, environment *types.Environment) {
	otpService := services.NewOtpService(dbSelector)

	// Create INDEXES
	otpRepo, otpErr := dbSelector.ChooseDB(repository.Otp)
	if otpErr != nil {
		panic(otpErr)
	}
	documentRepo, docErr := dbSelector.ChooseDB(repository.Documents)
	if docErr != nil {
		panic(docErr)
	}

	// OTP INDEXES
	if iErr := repository.CreateOtpPairIndex(otpRepo); iErr != nil {
		panic(iErr)
	}
	if iErr := repository.CreateOtpExpiryIndex(otpRepo); iErr != nil {
		panic(iErr)
	}

	// DOCUMENT INDEXES
	if iErr := repository.CreateDocumentHashIndex(documentRepo); iErr != nil {
		panic(iErr)
	}

	// cron jobs
	environment.Cron.AddFunc("@every 5m", func() { otpService.RemoveExpiredChallenges() }) // purge expired challenges every 5 minutes
	environment.Cron.Start()
	go otpService.RemoveExpiredChallenges() // run once on startup
}

func ConfigS3Storage(conf *global.Config, env *types.Environment) {
	// configure S3 storage
	credentials := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(conf.Storage.Key, conf.Storage.Secret, ""))
	awsConf, err := config.LoadDefaultConfig(context.TODO(), config.WithCredentialsProvider(credentials), config.WithRegion(conf.Storage.Region))
	if err != nil {
		panic(err)
	}
	s3Client := s3.NewFromConfig(awsConf)
	uploader := manager.NewUploader(s3Client)
	downloader := manager.NewDownloader(s3Client)
	env.AddS3Uploader(uploader)
	env.AddS3Downloader(downloader)

	env.S3Client = s3Client
}
