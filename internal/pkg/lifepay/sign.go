package lifepay

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// legacySignFields is the protocol-defined concatenation order for the v1.0
// IPN signature. Order and presence of every field is significant; a field
// missing from the notification contributes an empty string.
var legacySignFields = [...]string{
	"tid",
	"name",
	"comment",
	"partner_id",
	"service_id",
	"order_id",
	"type",
	"cost",
	"income_total",
	"income",
	"partner_income",
	"system_income",
	"command",
	"phone_number",
	"email",
	"resultStr",
	"date_created",
	"version",
}

// SignLegacy computes the v1.0 IPN signature: the URL-encoded hex MD5 of the
// fields concatenated in protocol order with the secret key appended.
func SignLegacy(params map[string]string, secret string) string {
	var b strings.Builder
	for _, f := range legacySignFields {
		b.WriteString(params[f])
	}
	b.WriteString(secret)

	sum := md5.Sum([]byte(b.String()))
	return url.QueryEscape(hex.EncodeToString(sum[:]))
}

// SignCanonical computes the v2.0 signature: base64 of the HMAC-SHA256 over
// the canonical request string METHOD\nHOST\nPATH\nSORTED_QUERY.
//
// Keys are sorted byte-wise. The gateway's reference implementation sorts
// with locale collation; for ASCII field names the orderings agree, any
// non-ASCII key would need verification against live provider traffic.
func SignCanonical(method, rawURL string, params map[string]string, secretKey string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	host := u.Hostname()
	if p := u.Port(); p != "" && p != "80" {
		host += ":" + p
	}

	if strings.ToUpper(method) == "POST" {
		method = "POST"
	} else {
		method = "GET"
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+percentEncode(params[k]))
	}

	data := strings.Join([]string{method, host, u.Path, strings.Join(pairs, "&")}, "\n")

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// OutboundHash computes the x_fp_hash for the offsite redirect form: the hex
// HMAC-MD5 over login^sequence^timestamp^amount^currency.
func OutboundHash(login, sequence, timestamp, amount, currency, secret string) string {
	msg := strings.Join([]string{login, sequence, timestamp, amount, currency}, "^")

	mac := hmac.New(md5.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// OffsiteHash computes the relay-response hash posted back on the offsite
// flow: MD5 over secret+login+transaction+amount, hex encoded.
func OffsiteHash(secret, login, transactionID, amount string) string {
	sum := md5.Sum([]byte(secret + login + transactionID + amount))
	return hex.EncodeToString(sum[:])
}

// VerifySignature compares a provider-sent signature against the computed
// one. Exact string equality, matching the gateway contract; offsite relay
// hashes arrive upper-cased so callers fold case there.
func VerifySignature(expected, computed string) bool {
	return expected == computed
}

// percentEncode applies RFC 3986 percent-encoding (space as %20, "-_.~"
// untouched) to a query value.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
