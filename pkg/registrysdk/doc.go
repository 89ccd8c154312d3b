/*
Package registrysdk is a Go client for the client registry REST API.

An SDKClient talks to the public endpoints and turns operator credentials
into a Session:

	client := registrysdk.NewSDKClient("https://registry.example.com")
	session, err := client.AuthenticateWithPassword(ctx, "admin", password, nil)

A Session carries the bearer token for the /v1 endpoints:

	page, err := session.ListClients(ctx, registrysdk.ListClientsParams{Search: "empresa"})
	c, err := session.CreateClient(ctx, registrysdk.ClientRequest{Name: "EMPRESA EJEMPLO S.A.", TaxID: "30-12345678-9"})

Non-2xx responses come back as *APIError. Use errors.As to inspect the status
code and, for validation failures, the per-field Details.

The request and response types are shared with the server, so they double as
the wire contract.
*/
package registrysdk
