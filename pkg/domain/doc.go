/*
Package domain contains the core models shared by the quill rendering bridge and the
application around it.

It defines what a template is, the error taxonomy of a render call, the observability
events emitted while a request travels through the worker, and the records persisted by
the CRUD side of the application. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Template: A descriptor carrying a template name and its source text, either baked in at
    startup (Static) or re-read on every call (Dynamic).
  - RenderError: The single error type returned by a render call, classified by Kind.
  - RenderEvent / RenderHooks: Lifecycle callbacks used for logging and metrics.
  - User / InboxMessage: Rows handled by the CRUD handlers.
*/
package domain
