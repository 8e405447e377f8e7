/*
Package authsdk is the Go client for the Lectern API, and the home of the
request, response and error types the server encodes.

# Client vs Session

SDKClient covers the unauthenticated endpoints: registration, login, token
refresh and health probes. A successful login yields a Session, which carries
the access and refresh token pair and refreshes the access token shortly
before it expires:

	client := authsdk.NewSDKClient("https://lectern.example.edu")

	sess, err := client.Login(ctx, authsdk.LoginRequest{
		Email:    "ada@example.edu",
		Password: "Valid123",
	})
	if err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeMFARequired {
			// retry with LoginRequest.OTP set
		}
		return err
	}

	me, err := sess.Me(ctx)

# Errors

Every non-2xx response is returned as *APIError. Credential failures share
the codes invalid_credentials and invalid_token regardless of cause; the
server never says whether the email, the password, the signature or the
expiry was wrong.

# Concurrency

SDKClient and Session are safe for concurrent use. Concurrent calls on a
Session that find the access token expired perform a single refresh.
*/
package authsdk
