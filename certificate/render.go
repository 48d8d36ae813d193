package certificate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/amount"
)

// ImageSVG renders the certificate as a minimal inline SVG showing the
// price snapshot.
func (c Certificate) ImageSVG() string {
	price := amount.FormatUnits(c.Price, amount.Decimals)
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" preserveAspectRatio="xMinYMin meet" viewBox="0 0 350 350">`+
			`<style>.base { fill: white; font-family: serif; font-size: 14px; }</style>`+
			`<rect width="100%%" height="100%%" fill="black" />`+
			`<text x="50%%" y="40%%" class="base" dominant-baseline="middle" text-anchor="middle">Maintenance Certificate #%d</text>`+
			`<text x="50%%" y="60%%" class="base" dominant-baseline="middle" text-anchor="middle">Price: %s</text>`+
			`</svg>`,
		c.ID, price)
}

// TokenURI returns a data-URI metadata document describing the
// certificate, with the SVG image embedded as a nested data URI.
func (c Certificate) TokenURI() string {
	image := "data:image/svg+xml;base64," +
		base64.StdEncoding.EncodeToString([]byte(c.ImageSVG()))

	meta := map[string]string{
		"name":        fmt.Sprintf("Maintenance Certificate #%d", c.ID),
		"description": "Certificate of a paid maintenance task with a price snapshot at mint time.",
		"image":       image,
	}
	doc, _ := json.Marshal(meta)
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(doc)
}
