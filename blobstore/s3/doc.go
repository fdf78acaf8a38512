// Package s3 stores road graph files in Amazon S3.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "graphs/")
//
//	nav, err := navigo.Open(ctx, navigo.Remote(store, "bw-2024.bin"))
//
// Graph files are opened with a HEAD request and streamed with ranged GETs.
// Put goes through the multipart upload manager, so multi-gigabyte country
// graphs upload in parallel parts.
//
// # Catalog
//
// Catalog records which blob holds the current version of a named graph in a
// DynamoDB table. Publishing a version is a conditional write, so two
// publishers racing on the same version number cannot both win.
package s3
