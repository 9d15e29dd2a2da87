// Package sampledb is a client for the SampleDB REST API (/api/v1).
//
// A Client starts unauthenticated:
//
//	c := sampledb.New()
//	if err := c.Authenticate(ctx, "https://sampledb.example.com", apiKey); err != nil {
//		return err
//	}
//	inst, err := c.Instruments.Get(ctx, 1)
//
// Entities that reference users or locations by id are returned with those
// references resolved, one request per reference. Resolution goes through a
// Resolver, which WithResolver replaces.
//
// Errors wrap the sentinels in errors.go and can be matched with errors.Is.
// Nothing is retried.
package sampledb
