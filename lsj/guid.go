package lsj

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/larian-tools/assetcore/apperr"
)

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &apperr.InvalidFormat{Context: "scratch buffer base64", Err: err}
	}
	return b, nil
}

func renderGuidJSON(g [16]byte) string {
	return hex.EncodeToString(g[0:4]) + "-" + hex.EncodeToString(g[4:6]) + "-" +
		hex.EncodeToString(g[6:8]) + "-" + hex.EncodeToString(g[8:10]) + "-" + hex.EncodeToString(g[10:16])
}

func parseGuidJSON(s string) ([16]byte, error) {
	var g [16]byte
	stripped := strings.ReplaceAll(s, "-", "")
	if len(stripped) != 32 {
		return g, &apperr.InvalidFormat{Context: "guid text length"}
	}
	decoded, err := hex.DecodeString(stripped)
	if err != nil {
		return g, &apperr.InvalidFormat{Context: "guid text digit", Err: err}
	}
	copy(g[:], decoded)
	return g, nil
}
