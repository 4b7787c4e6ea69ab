package pikudo_api_client

import (
	"context"

	"github.com/mikimas/pikudo-client/clients"
)

// UploadChallengeMedia sends a photo or video for a challenge as multipart
// form data. onProgress, when non-nil, receives upload percentages; if the
// progress-reporting attempt dies without a response the call falls back to
// the plain transport once before reporting NETWORK_ERROR.
func (c *PikudoApiClient) UploadChallengeMedia(ctx context.Context, playerChallengeID, fileName, mimeType string, data []byte, onProgress func(pct int)) *clients.APIError {
	res := c.Do(ctx, clients.Request{
		Method: "POST",
		Path:   UploadEndpoint,
		Form: &clients.FormBody{
			Fields:    map[string]string{"playerChallengeId": playerChallengeID},
			FileField: "file",
			FileName:  fileName,
			FileMIME:  mimeType,
			File:      data,
		},
		OnProgress: onProgress,
	})
	return decodeOK(res)
}
