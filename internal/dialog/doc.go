// Package dialog provides the file and folder pickers used by the import and
// settings commands.
//
// TerminalPicker runs a bubbletea program around the bubbles filepicker,
// styled with the active light or dark theme. SelectGarminExport accepts
// only .zip archives; SelectFitFolder and SelectDataRoot accept directories
// only, where "." picks the directory being shown. Every selector returns
// ok=false when the user cancels.
package dialog
