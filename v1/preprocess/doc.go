// Package preprocess turns images into model input tensors the way the
// Hugging Face CLIP image processor does.
//
// A Profile is loaded once per model from its client directory in an
// assetstore.Source:
//
//	<client-dir>/feature_extractor/preprocessor_config.json
//	<client-dir>/tokenizer/vocab.json
//	<client-dir>/tokenizer/merges.txt
//	<client-dir>/tokenizer/tokenizer_config.json      (optional)
//	<client-dir>/tokenizer/special_tokens_map.json    (optional)
//
// Missing or malformed required files fail Load with ErrProfileLoad.
//
// # Pipeline
//
// Profile.Preprocess applies, in order:
//
//  1. RGB coercion for every image that does not have exactly three channels
//     (alpha is dropped, gray replicated, palettes expanded)
//  2. resize so the shortest edge matches "size", or to an exact
//     height/width when the config names both
//  3. center crop to "crop_size", padding with zeros when the image is smaller
//  4. rescale by "rescale_factor" and normalize with "image_mean"/"image_std"
//
// The result is a float32 tensor in channel-first layout with shape
// (1, 3, H, W):
//
//	profile, err := preprocess.Load(ctx, src, "bria_attribution_model_client")
//	if err != nil {
//	    return err
//	}
//	img, _, err := preprocess.DecodeImage(file)
//	if err != nil {
//	    return err
//	}
//	t, err := profile.Preprocess(img)
//
// Preprocessing is deterministic: the same image and profile always produce
// the same tensor. Profiles are read-only and may be shared across
// goroutines.
package preprocess
