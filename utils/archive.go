// utils/archive.go
package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"arcade-arena/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// TournamentArchiver writes a completed tournament (header + matches) as a
// JSON object to an S3-compatible bucket (R2). Optional: main only wires it
// when the env vars are present.
type TournamentArchiver struct {
	client *s3.Client
	bucket string
}

// ArchiveEnabled reports whether the archive env vars are configured.
func ArchiveEnabled() bool {
	return os.Getenv("R2_BUCKET_NAME") != "" && os.Getenv("R2_ACCESS_KEY_ID") != ""
}

func NewTournamentArchiver() (*TournamentArchiver, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	bucket := os.Getenv("R2_BUCKET_NAME")

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	return &TournamentArchiver{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

type tournamentArchive struct {
	Tournament models.TournamentRecord `json:"tournament"`
	Matches    []models.MatchRecord    `json:"matches"`
}

// ArchiveTournament implements services.Archiver.
func (a *TournamentArchiver) ArchiveTournament(rec models.TournamentRecord, matches []models.MatchRecord) error {
	body, err := json.Marshal(tournamentArchive{Tournament: rec, Matches: matches})
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}

	key := fmt.Sprintf("tournaments/archive/%s.json", rec.ID)
	_, err = a.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive: %w", err)
	}
	return nil
}
