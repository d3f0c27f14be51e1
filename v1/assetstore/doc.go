// Package assetstore gives read access to the preprocessing assets of every
// model: the feature extractor and tokenizer configuration files that live
// next to each other below a per-model client directory:
//
//	<base>/<client-dir>/feature_extractor/preprocessor_config.json
//	<base>/<client-dir>/tokenizer/tokenizer_config.json
//	<base>/<client-dir>/tokenizer/vocab.json
//	<base>/<client-dir>/tokenizer/merges.txt
//
// Two stores are available:
//
//   - DirSource: <base> is a directory on the local filesystem
//   - MinioSource: <base> is a key prefix inside a MinIO bucket
//
// Both implement Source and are selected with Config.Kind:
//
//	src, err := assetstore.New(assetstore.Config{
//	    Kind: assetstore.KindMinio,
//	    Minio: assetstore.MinioConfig{
//	        Endpoint:   "localhost:9000",
//	        BucketName: "model-assets",
//	        Prefix:     "embedder",
//	    },
//	}, log)
//
// # Configuration
//
// With the application prefix EMBEDDER and the section ASSETS:
//
//	EMBEDDER_ASSETS_KIND=minio
//	EMBEDDER_ASSETS_DIR=/models
//	EMBEDDER_ASSETS_MINIO_ENDPOINT=localhost:9000
//	EMBEDDER_ASSETS_MINIO_BUCKET_NAME=model-assets
//
// Missing assets are reported as ErrNotFound.
package assetstore
