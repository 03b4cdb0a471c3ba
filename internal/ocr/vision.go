package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/a3tai/mcp-form-drafter/internal/logger"
)

const visionTimeout = 60 * time.Second

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// Vision recognizes text with Google Cloud Vision DOCUMENT_TEXT_DETECTION.
type Vision struct {
	client   *vision.ImageAnnotatorClient
	annotate annotateFunc
	log      *logger.Logger
}

// NewVision creates a Cloud Vision engine. An empty credentials path uses
// application default credentials.
func NewVision(ctx context.Context, credentialsFile string, log *logger.Logger) (*Vision, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	v := newVisionWith(func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}, log)
	v.client = client
	return v, nil
}

func newVisionWith(annotate annotateFunc, log *logger.Logger) *Vision {
	return &Vision{annotate: annotate, log: logger.OrNop(log).With("service", "ocr.Vision")}
}

func (v *Vision) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

func (v *Vision) Recognize(ctx context.Context, image []byte, model Model) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	ctx, cancel := context.WithTimeout(ctx, visionTimeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
			ImageContext: &visionpb.ImageContext{LanguageHints: visionLanguageHints(model)},
		}},
	}

	resp, err := v.annotate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}

	text := strings.TrimSpace(r0.FullTextAnnotation.Text)
	v.log.Debug("vision page recognized", "model", model.String(), "chars", len([]rune(text)))
	return text, nil
}

func visionLanguageHints(model Model) []string {
	if model == ModelLatin {
		return []string{"en"}
	}
	return []string{"zh", "en"}
}
