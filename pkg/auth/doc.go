// Package auth manages the Apify API token across storage backends.
//
// Tokens are resolved with fallback: the APIFY_TOKEN environment variable
// first, then the system keyring, then an AES-GCM encrypted file under
// the user config directory. The environment store is read-only; writes
// go to the keyring when available and the encrypted file otherwise.
package auth
