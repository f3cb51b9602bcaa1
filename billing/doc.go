// Package billing glues the application to Stripe: it starts hosted
// checkout sessions for signed-in users and receives webhook deliveries,
// verifying each signature before handing the event off.
package billing
