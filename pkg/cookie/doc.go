// Package cookie builds HTTP cookies with shared attributes and optional
// HMAC signing.
//
// A [Manager] does not write to an http.ResponseWriter; it returns
// *http.Cookie values so callers can queue them on a response and write them
// once, together with the rest of the headers:
//
//	m := cookie.New(cookie.WithSecure(true), cookie.WithSecret(secret))
//
//	c, err := m.Signed("__sid", token, 86400)
//	if err != nil {
//		return err
//	}
//	resp.AddCookie(c)
//
//	token, err := m.SignedValue(r, "__sid")
//	if errors.Is(err, cookie.ErrBadSig) {
//		// tampered
//	}
//
// Without a secret, [Manager.Signed] and [Manager.SignedValue] fall back to
// plain values so development setups work unchanged.
package cookie
