// Package cascade answers a query from the document registry when the intent
// bank has nothing confident.
//
// Phase A scans documents one at a time, highest priority first, sending the
// raw file to the primary model with a prompt that demands an answer from that
// file alone or the sentinel phrase. The first confident reply wins. A provider
// error ends Phase A for the request; missing files are skipped.
//
// Phase B concatenates the extracted text of every present document, in the
// same order, and asks the secondary model exactly once. Its reply is returned
// verbatim, sentinel or not. Phase B failures are terminal.
//
// Only core.Result values leave the cascade; failures become KindError results
// with a user-facing message.
package cascade
