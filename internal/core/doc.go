// Package core provides the label-merge pipeline: turning an uploaded address
// file into a print-ready sheet of mailing labels.
//
// This package holds all domain logic independent of any UI or transport
// layer. Every stage is a pure function of its inputs, so it can be called by
// the web handlers, the CLI, or tests without setup.
//
// # Pipeline
//
// The stages run in a fixed order:
//
//  1. [Ingest] parses raw file bytes into a [Dataset] (headers + ordered rows).
//  2. [Detect] guesses which header holds each semantic [Field] and scores
//     each guess with a confidence in [0,1].
//  3. The caller confirms or overrides the [Mapping] field by field.
//  4. [Layout] turns rows into [Label] values, dropping rows with no content.
//  5. [Render] writes a self-contained HTML document sized to the chosen
//     sheet [Geometry].
//
// # Formats
//
// Sheet geometries are fixed physical specifications (Avery 5160, 5163, 5164,
// 5167) looked up with [Lookup]. They are registered once at init time and
// each one is checked so that margins, label sizes and gutters add up to the
// page size on both axes.
//
// # Error Handling
//
// Ingest failures are returned as [*IngestError] and can be matched with
// errors.Is against [ErrDelimiter], [ErrNoColumns], [ErrNoData],
// [ErrOversizedFile] and [ErrUnsupportedFile]. Rendering against an unknown
// format returns [*UnknownFormatError] before any output is written.
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, structure, encoding, empty)
//   - FMT001: Unknown label format
//   - MAP001: Incomplete column mapping
//   - SES001: Session not found
//   - STEP001: Wizard step not finished
//   - REQ001-REQ004: Request cancelled, timed out, busy or malformed
//   - RATE001: Rate limited
//
// Detection and layout have no error path: a field with no mapped header
// simply contributes no line to a label.
package core
