package connection

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// FBConnection opens a Firestore client with the service account key at
// credentialsPath.
func FBConnection(ctx context.Context, credentialsPath string, log *logrus.Entry) (*firestore.Client, error) {
	if credentialsPath == "" {
		return nil, errors.New("FIREBASE_CREDENTIALS is not set")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "error initializing app")
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting Firestore client")
	}

	log.Info("Firestore connection successful")
	return client, nil
}
