// Package iscab reads InstallShield cabinet archives.
//
// A cabinet is split across two files: a header (conventionally
// data1.hdr) carrying the catalog of directories, files, file groups,
// and components, and a data volume (data1.cab) carrying compressed
// payloads as deflate chunk streams. Files the catalog marks as
// uncompressed live loose on the install media next to the header.
//
// Open loads both halves from disk; New works from an in-memory header
// and any ByteSource. A Cabinet answers catalog queries, streams
// individual payloads through Reader, and unpacks everything with
// Extract:
//
//	cab, err := iscab.Open("data1.hdr", "data1.cab")
//	if err != nil {
//		return err
//	}
//	defer cab.Close()
//
//	report, err := cab.Extract(ctx, "out")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("extracted %d files\n", report.Extracted)
//
// Extraction is resilient: per-file failures, missing loose files, and
// integrity mismatches are recorded in the Report rather than aborting
// the run.
package iscab
