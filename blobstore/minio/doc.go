// Package minio stores road graph files in MinIO or any S3-compatible
// object store (Ceph, SeaweedFS, Garage).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "graphs", "osm/")
//	nav, err := navigo.Open(ctx, navigo.Remote(store, "bw-2024.bin"))
//
// It needs no AWS SDK, which keeps air-gapped deployments small.
package minio
