// Package document converts DOCX to PDF and PDF to DOCX through a headless
// LibreOffice (soffice) process.
//
// Each conversion runs in its own temporary output directory and with a
// throwaway user profile so concurrent runs, or a desktop LibreOffice
// session, do not collide. The produced file is moved to the requested path.
package document
